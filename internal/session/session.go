// package session persists the playback state so playback resumes after the program restarts
// within the same session
package session

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/shared"
)

// Engine is the part of the player the store saves from and resumes into.
type Engine interface {
	Snapshot() player.Snapshot
	Play(track models.Track, playlist models.Playlist, offset float64)
}

// TrackLookup resolves stored track ids.
type TrackLookup interface {
	Track(id int64) (models.Track, bool)
}

// Store saves and restores the engine's playback state through the session-scoped slot.
//
// Recovery is one-shot: [Store.Load] consumes the slot, so a second load without a new save does nothing.
type Store struct {
	slots  repositories.SlotStore
	engine Engine
	tracks TrackLookup
	logger *log.Logger
}

// NewStore creates a [Store].
func NewStore(slots repositories.SlotStore, engine Engine, tracks TrackLookup, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Store{slots: slots, engine: engine, tracks: tracks, logger: logger}
}

// Save stores the playback state when the engine is actively playing a non-empty playlist.
// Otherwise it clears the slot.
func (s *Store) Save(ctx context.Context) error {
	snap := s.engine.Snapshot()
	if !snap.State.Active() || len(snap.Playlist) == 0 {
		s.logger.Debug("nothing to resume, clearing playback state", "state", snap.State)
		if err := repositories.Clear(ctx, s.slots, repositories.PlaybackStateKey); err != nil {
			return fmt.Errorf("failed to clear playback state: %w", err)
		}
		return nil
	}

	state := snap.PlaybackState()
	if err := repositories.Write(ctx, s.slots, repositories.PlaybackStateKey, state); err != nil {
		return fmt.Errorf("failed to save playback state: %w", err)
	}
	s.logger.Debug("saved playback state", "index", state.CurrentIndex, "elapsed", state.ElapsedSeconds)
	return nil
}

// Load consumes the stored playback state and resumes it.
//
// It reports whether playback was resumed. Missing, malformed or unresolvable state is not an error.
func (s *Store) Load(ctx context.Context) (bool, error) {
	state, ok, err := repositories.Read(ctx, s.slots, repositories.PlaybackStateKey)
	if err != nil {
		return false, fmt.Errorf("failed to read playback state: %w", err)
	}
	if err := repositories.Clear(ctx, s.slots, repositories.PlaybackStateKey); err != nil {
		s.logger.Warn("failed to clear playback state", "error", err)
	}
	if !ok {
		s.logger.Debug("no playback state to resume")
		return false, nil
	}

	if err := state.Validate(); err != nil {
		s.logger.Debug("ignoring playback state", "reason", err)
		return false, nil
	}

	id, _ := state.CurrentTrackID()
	track, ok := s.tracks.Track(id)
	if !ok {
		s.logger.Debug("ignoring playback state", "reason", "track not in catalog", "track", id)
		return false, nil
	}

	s.engine.Play(track, state.Playlist, state.ElapsedSeconds)
	s.logger.Info("resumed playback", "track", id, "index", state.CurrentIndex, "elapsed", state.ElapsedSeconds)
	return true, nil
}
