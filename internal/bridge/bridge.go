package bridge

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
)

const (
	loginTitle   = "Login Required"
	loginMessage = "You need to be logged in to play music. Go to the login page?"
)

// Outcome is what happened to a request.
type Outcome int

const (
	OutcomePlayed     Outcome = iota // forwarded to the player
	OutcomeDropped                   // login declined, request discarded
	OutcomeRedirected                // login accepted, state saved, navigated to login
	OutcomeNotFound                  // track not in the catalog
	OutcomeFailed                    // navigation to login failed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePlayed:
		return "played"
	case OutcomeDropped:
		return "dropped"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Player starts playback.
type Player interface {
	Play(track models.Track, playlist models.Playlist, offset float64)
}

// TrackLookup resolves track ids against the catalog.
type TrackLookup interface {
	Track(id int64) (models.Track, bool)
}

// SessionChecker reports whether an authenticated session exists.
type SessionChecker interface {
	LoggedIn(ctx context.Context) (bool, error)
}

// Prompter asks the visitor a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// Saver persists the playback state before leaving for login.
type Saver interface {
	Save(ctx context.Context) error
}

// Navigator sends the visitor to the login entry point.
type Navigator interface {
	Login(ctx context.Context) error
}

// Options wires a [Bridge]. A nil Session disables the login gate.
type Options struct {
	Bus       *Bus
	Player    Player
	Tracks    TrackLookup
	Session   SessionChecker
	Prompter  Prompter
	Saver     Saver
	Navigator Navigator
	Logger    *log.Logger
}

// Bridge is the single subscriber of the [Bus].
type Bridge struct {
	opts   Options
	logger *log.Logger
}

// New creates a [Bridge].
func New(opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Bridge{opts: opts, logger: logger}
}

// Run handles requests until ctx is done or the bus closes.
func (b *Bridge) Run(ctx context.Context) error {
	requests, err := b.opts.Bus.Subscribe()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.opts.Bus.Done():
			return nil
		case req := <-requests:
			outcome := b.Handle(ctx, req)
			b.logger.Debug("play request handled", "track", req.TrackID, "outcome", outcome)
		}
	}
}

// Handle gates req behind login and forwards it to the player.
//
// Without a session the visitor is asked to log in. Declining drops the request. Accepting saves
// the playback state and navigates to login; the request itself is not kept, so it survives only
// when something was already playing.
func (b *Bridge) Handle(ctx context.Context, req PlayRequested) Outcome {
	if !b.loggedIn(ctx) {
		return b.gate(ctx)
	}

	track, ok := b.opts.Tracks.Track(req.TrackID)
	if !ok {
		b.logger.Warn("requested track not in catalog", "track", req.TrackID)
		return OutcomeNotFound
	}

	b.opts.Player.Play(track, req.Playlist, 0)
	return OutcomePlayed
}

func (b *Bridge) loggedIn(ctx context.Context) bool {
	if b.opts.Session == nil {
		return true
	}
	ok, err := b.opts.Session.LoggedIn(ctx)
	if err != nil {
		b.logger.Error("failed to check session", "error", err)
		return false
	}
	return ok
}

func (b *Bridge) gate(ctx context.Context) Outcome {
	if b.opts.Prompter == nil {
		return OutcomeDropped
	}

	accepted, err := b.opts.Prompter.Confirm(ctx, loginTitle, loginMessage)
	if err != nil {
		b.logger.Warn("login prompt failed", "error", err)
		return OutcomeDropped
	}
	if !accepted {
		b.logger.Info("login declined, dropping play request")
		return OutcomeDropped
	}

	if b.opts.Saver != nil {
		if err := b.opts.Saver.Save(ctx); err != nil {
			b.logger.Warn("failed to save playback state before login", "error", err)
		}
	}
	if b.opts.Navigator == nil {
		return OutcomeFailed
	}
	if err := b.opts.Navigator.Login(ctx); err != nil {
		b.logger.Error("failed to open login", "error", err)
		return OutcomeFailed
	}
	return OutcomeRedirected
}
