// package bridge carries play requests from browsing views to the player and gates them behind login
package bridge

import (
	"context"
	"sync"

	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
)

// PlayRequested asks the player to start TrackID within Playlist.
//
// It is the only way a view starts playback.
type PlayRequested struct {
	TrackID  int64           `json:"track_id"`
	Playlist models.Playlist `json:"playlist"`
}

// Bus delivers [PlayRequested] messages to a single subscriber.
type Bus struct {
	ch   chan PlayRequested
	done chan struct{}

	mu         sync.Mutex
	subscribed bool
	once       sync.Once
}

// NewBus creates a bus holding up to buffer undelivered requests.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan PlayRequested, max(buffer, 0)), done: make(chan struct{})}
}

// Publish sends req to the subscriber, waiting for buffer space until ctx is done or the bus closes.
func (b *Bus) Publish(ctx context.Context, req PlayRequested) error {
	select {
	case <-b.done:
		return shared.ErrBusClosed
	default:
	}

	req.Playlist = req.Playlist.Clone()
	select {
	case b.ch <- req:
		return nil
	case <-b.done:
		return shared.ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns the request stream. Only one subscriber is allowed.
func (b *Bus) Subscribe() (<-chan PlayRequested, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribed {
		return nil, shared.ErrAlreadySubscribed
	}
	b.subscribed = true
	return b.ch, nil
}

// Done is closed when the bus closes.
func (b *Bus) Done() <-chan struct{} { return b.done }

// Close stops the bus. Pending requests are discarded.
func (b *Bus) Close() error {
	b.once.Do(func() { close(b.done) })
	return nil
}
