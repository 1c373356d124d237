package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrNotLoggedIn    = fmt.Errorf("not logged in")
	ErrLoginDeclined  = fmt.Errorf("login declined")
	ErrInvalidSession = fmt.Errorf("invalid session marker")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrArtistNotFound     = fmt.Errorf("artist not found")

	// Storage errors
	ErrSlotNotFound = fmt.Errorf("slot not found")
	ErrInvalidState = fmt.Errorf("invalid playback state")

	// Playback and messaging errors
	ErrMediaLoad         = fmt.Errorf("media failed to load")
	ErrAlreadySubscribed = fmt.Errorf("bus already has a subscriber")
	ErrBusClosed         = fmt.Errorf("bus closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
