package models

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Track represents a song record from the data service.
type Track struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	ArtistID        int64  `json:"artist_id"`
	Genre           string `json:"genre,omitempty"`
	ArtworkURL      string `json:"artwork_url"`
	AudioURL        string `json:"audio_url"`
	VideoURL        string `json:"video_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	PlayCount       int    `json:"play_count"`
	DownloadCount   int    `json:"download_count"`
	LikeCount       int    `json:"like_count"`
}

// Artist represents an artist record from the data service.
type Artist struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url"`
	Bio          string `json:"bio,omitempty"`
	TwitterURL   string `json:"twitter_url,omitempty"`
	InstagramURL string `json:"instagram_url,omitempty"`
	FacebookURL  string `json:"facebook_url,omitempty"`
}

// User is the account returned by a successful login.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
}

// Playlist is an ordered sequence of track ids.
//
// It references tracks by id only; the catalog owns the records.
type Playlist []int64

// NewPlaylist builds a [Playlist] from the ids of the given tracks, preserving order.
func NewPlaylist(tracks []Track) Playlist {
	p := make(Playlist, len(tracks))
	for i, t := range tracks {
		p[i] = t.ID
	}
	return p
}

// Len returns the number of entries.
func (p Playlist) Len() int { return len(p) }

// IndexOf returns the position of id, or -1 if it is not a member.
func (p Playlist) IndexOf(id int64) int {
	return slices.Index(p, id)
}

// At returns the id at position i and whether i was in range.
func (p Playlist) At(i int) (int64, bool) {
	if i < 0 || i >= len(p) {
		return 0, false
	}
	return p[i], true
}

// Clone returns a copy that does not share the backing array.
func (p Playlist) Clone() Playlist {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// PlaybackState is the snapshot persisted so playback resumes across restarts.
type PlaybackState struct {
	Playlist       Playlist `json:"playlist"`
	CurrentIndex   int      `json:"current_index"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

// Validate reports why the state cannot be resumed, or nil.
//
// An empty playlist invalidates the state entirely.
func (s PlaybackState) Validate() error {
	if len(s.Playlist) == 0 {
		return fmt.Errorf("empty playlist")
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Playlist) {
		return fmt.Errorf("index %d out of range [0, %d)", s.CurrentIndex, len(s.Playlist))
	}
	if s.ElapsedSeconds < 0 || math.IsNaN(s.ElapsedSeconds) || math.IsInf(s.ElapsedSeconds, 0) {
		return fmt.Errorf("invalid elapsed time %v", s.ElapsedSeconds)
	}
	return nil
}

// Valid is shorthand for Validate() == nil.
func (s PlaybackState) Valid() bool { return s.Validate() == nil }

// CurrentTrackID returns the id under the cursor.
func (s PlaybackState) CurrentTrackID() (int64, bool) {
	return s.Playlist.At(s.CurrentIndex)
}

// SessionMarker records an authenticated session.
type SessionMarker struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSessionMarker creates a marker for user valid for ttl from now.
func NewSessionMarker(user User, ttl time.Duration) SessionMarker {
	now := time.Now().UTC().Truncate(time.Second)
	return SessionMarker{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the marker is no longer valid at now.
// A zero expiry never expires.
func (m SessionMarker) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && !now.Before(m.ExpiresAt)
}
