package bridge

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
)

var library = catalog.New(
	[]models.Track{{ID: 1, Title: "Alpha", AudioURL: "/a.mp3"}, {ID: 2, Title: "Beta", AudioURL: "/b.mp3"}},
	nil,
)

type played struct {
	track    models.Track
	playlist models.Playlist
	offset   float64
}

type recorder struct {
	calls   []string
	plays   []played
	session bool
	sessErr error
	confirm bool
	navErr  error
}

func (r *recorder) Play(track models.Track, playlist models.Playlist, offset float64) {
	r.calls = append(r.calls, "play")
	r.plays = append(r.plays, played{track, playlist, offset})
}

func (r *recorder) LoggedIn(context.Context) (bool, error) { return r.session, r.sessErr }

func (r *recorder) Confirm(_ context.Context, title, _ string) (bool, error) {
	r.calls = append(r.calls, "confirm:"+title)
	return r.confirm, nil
}

func (r *recorder) Save(context.Context) error {
	r.calls = append(r.calls, "save")
	return nil
}

func (r *recorder) Login(context.Context) error {
	r.calls = append(r.calls, "login")
	return r.navErr
}

func newBridge(r *recorder, bus *Bus) *Bridge {
	return New(Options{
		Bus:       bus,
		Player:    r,
		Tracks:    library,
		Session:   r,
		Prompter:  r,
		Saver:     r,
		Navigator: r,
	})
}

func TestBridge_Handle(t *testing.T) {
	ctx := context.Background()
	req := PlayRequested{TrackID: 2, Playlist: models.Playlist{1, 2}}

	tests := []struct {
		name      string
		rec       *recorder
		req       PlayRequested
		want      Outcome
		wantCalls []string
	}{
		{
			name:      "logged in plays from the start",
			rec:       &recorder{session: true},
			req:       req,
			want:      OutcomePlayed,
			wantCalls: []string{"play"},
		},
		{
			name:      "unknown track",
			rec:       &recorder{session: true},
			req:       PlayRequested{TrackID: 404, Playlist: models.Playlist{404}},
			want:      OutcomeNotFound,
			wantCalls: nil,
		},
		{
			name:      "declined login drops the request",
			rec:       &recorder{confirm: false},
			req:       req,
			want:      OutcomeDropped,
			wantCalls: []string{"confirm:Login Required"},
		},
		{
			name:      "accepted login saves before navigating",
			rec:       &recorder{confirm: true},
			req:       req,
			want:      OutcomeRedirected,
			wantCalls: []string{"confirm:Login Required", "save", "login"},
		},
		{
			name:      "navigation failure",
			rec:       &recorder{confirm: true, navErr: errors.New("no browser")},
			req:       req,
			want:      OutcomeFailed,
			wantCalls: []string{"confirm:Login Required", "save", "login"},
		},
		{
			name:      "session check failure is treated as logged out",
			rec:       &recorder{session: true, sessErr: errors.New("redis down")},
			req:       req,
			want:      OutcomeDropped,
			wantCalls: []string{"confirm:Login Required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newBridge(tt.rec, NewBus(1)).Handle(ctx, tt.req)
			if got != tt.want {
				t.Errorf("Handle() = %v, want %v", got, tt.want)
			}
			if !slices.Equal(tt.rec.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", tt.rec.calls, tt.wantCalls)
			}
		})
	}

	t.Run("forwards the playlist at offset zero", func(t *testing.T) {
		r := &recorder{session: true}
		newBridge(r, NewBus(1)).Handle(ctx, req)

		if len(r.plays) != 1 {
			t.Fatalf("expected one play, got %d", len(r.plays))
		}
		p := r.plays[0]
		if p.track.ID != 2 || !slices.Equal(p.playlist, req.Playlist) || p.offset != 0 {
			t.Errorf("unexpected play %+v", p)
		}
	})

	t.Run("without a session checker the gate is open", func(t *testing.T) {
		r := &recorder{}
		b := New(Options{Bus: NewBus(1), Player: r, Tracks: library})
		if got := b.Handle(ctx, req); got != OutcomePlayed {
			t.Errorf("Handle() = %v, want played", got)
		}
	})

	t.Run("without a prompter logged-out requests are dropped", func(t *testing.T) {
		r := &recorder{}
		b := New(Options{Bus: NewBus(1), Player: r, Tracks: library, Session: r})
		if got := b.Handle(ctx, req); got != OutcomeDropped {
			t.Errorf("Handle() = %v, want dropped", got)
		}
	})
}

func TestBus(t *testing.T) {
	ctx := context.Background()

	t.Run("single subscriber", func(t *testing.T) {
		bus := NewBus(1)
		if _, err := bus.Subscribe(); err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if _, err := bus.Subscribe(); !errors.Is(err, shared.ErrAlreadySubscribed) {
			t.Errorf("expected ErrAlreadySubscribed, got %v", err)
		}
	})

	t.Run("publish copies the playlist", func(t *testing.T) {
		bus := NewBus(1)
		ch, _ := bus.Subscribe()
		pl := models.Playlist{1, 2}
		if err := bus.Publish(ctx, PlayRequested{TrackID: 1, Playlist: pl}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		pl[0] = 99

		if got := <-ch; got.Playlist[0] != 1 {
			t.Errorf("published request shares the caller's playlist: %v", got.Playlist)
		}
	})

	t.Run("publish after close", func(t *testing.T) {
		bus := NewBus(1)
		bus.Close()
		bus.Close()
		if err := bus.Publish(ctx, PlayRequested{TrackID: 1}); !errors.Is(err, shared.ErrBusClosed) {
			t.Errorf("expected ErrBusClosed, got %v", err)
		}
	})

	t.Run("publish honours the context when full", func(t *testing.T) {
		bus := NewBus(0)
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if err := bus.Publish(cctx, PlayRequested{TrackID: 1}); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
	})
}

type chanPlayer chan int64

func (c chanPlayer) Play(track models.Track, _ models.Playlist, _ float64) { c <- track.ID }

func TestBridge_Run(t *testing.T) {
	bus := NewBus(4)
	plays := make(chanPlayer, 4)
	b := New(Options{Bus: bus, Player: plays, Tracks: library})

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	for _, id := range []int64{1, 2} {
		if err := bus.Publish(context.Background(), PlayRequested{TrackID: id, Playlist: models.Playlist{1, 2}}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	for _, want := range []int64{1, 2} {
		select {
		case got := <-plays:
			if got != want {
				t.Errorf("expected track %d, got %d", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for requests to be handled")
		}
	}

	bus.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := bus.Subscribe(); !errors.Is(err, shared.ErrAlreadySubscribed) {
		t.Error("Run should hold the subscription")
	}
}

func TestBridge_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(Options{Bus: NewBus(1), Player: make(chanPlayer, 1), Tracks: library})
	if err := b.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		OutcomePlayed:     "played",
		OutcomeDropped:    "dropped",
		OutcomeRedirected: "redirected",
		OutcomeNotFound:   "not_found",
		OutcomeFailed:     "failed",
		Outcome(42):       "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(o), got, want)
		}
	}
}
