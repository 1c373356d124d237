package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/shared"
)

// LikeGlyph is the icon class shown for a track's like state.
type LikeGlyph string

const (
	GlyphLiked    LikeGlyph = "heart"
	GlyphNotLiked LikeGlyph = "heart-outline"
)

// GlyphFor returns the glyph for a like state.
func GlyphFor(liked bool) LikeGlyph {
	if liked {
		return GlyphLiked
	}
	return GlyphNotLiked
}

// Icon returns a terminal-friendly symbol for the glyph.
func (g LikeGlyph) Icon() string {
	if g == GlyphLiked {
		return "♥"
	}
	return "♡"
}

// LikeNotifier mirrors like toggles to the data service.
type LikeNotifier interface {
	ToggleLike(ctx context.Context, id int64, increment bool) error
}

// LikeView renders like glyphs.
type LikeView interface {
	SetLiked(id int64, glyph LikeGlyph)
}

// LikeSync owns the durable like set.
type LikeSync struct {
	slots    repositories.SlotStore
	notifier LikeNotifier
	logger   *log.Logger

	mu     sync.Mutex
	view   LikeView
	likes  models.LikeSet
	loaded bool
}

// NewLikeSync creates a [LikeSync]. notifier may be nil to keep likes local.
func NewLikeSync(slots repositories.SlotStore, notifier LikeNotifier, logger *log.Logger) *LikeSync {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &LikeSync{slots: slots, notifier: notifier, logger: logger}
}

// SetView sets the view whose glyphs are updated on toggle.
func (s *LikeSync) SetView(v LikeView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// Likes returns a copy of the like set.
func (s *LikeSync) Likes(ctx context.Context) (models.LikeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return models.LikeSet{}, err
	}
	return s.likes.Clone(), nil
}

// Liked reports whether id is in the like set.
func (s *LikeSync) Liked(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return false, err
	}
	return s.likes.Has(id), nil
}

// load reads the stored set once. A missing or malformed set starts empty. Callers hold s.mu.
func (s *LikeSync) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	likes, ok, err := repositories.Read(ctx, s.slots, repositories.LikeSetKey)
	if err != nil {
		return fmt.Errorf("failed to read likes: %w", err)
	}
	if !ok {
		likes = models.NewLikeSet()
	}
	s.likes = likes
	s.loaded = true
	return nil
}

// Toggle flips id in the like set and reports the new state.
//
// The set is persisted and the glyph updated before the data service is notified. A failed
// notification is logged; the local state stands.
func (s *LikeSync) Toggle(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	if err := s.load(ctx); err != nil {
		s.mu.Unlock()
		return false, err
	}

	liked := s.likes.Toggle(id)
	if err := repositories.Write(ctx, s.slots, repositories.LikeSetKey, s.likes); err != nil {
		s.likes.Toggle(id)
		s.mu.Unlock()
		return !liked, fmt.Errorf("failed to save likes: %w", err)
	}
	if s.view != nil {
		s.view.SetLiked(id, GlyphFor(liked))
	}
	s.mu.Unlock()

	if s.notifier != nil {
		if err := s.notifier.ToggleLike(ctx, id, liked); err != nil {
			s.logger.Warn("failed to sync like", "track", id, "liked", liked, "error", err)
		}
	}
	return liked, nil
}
