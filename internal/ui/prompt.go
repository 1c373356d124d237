package ui

import (
	"context"

	"github.com/desertthunder/jukebox/internal/bridge"
)

var _ bridge.Prompter = (*Confirmer)(nil)

type prompt struct {
	title   string
	message string
	answer  chan bool
}

// Confirmer shows yes/no dialogs in the TUI on behalf of other goroutines.
type Confirmer struct {
	requests chan *prompt
}

// NewConfirmer creates a [Confirmer]. A [Model] built with it renders its dialogs.
func NewConfirmer() *Confirmer {
	return &Confirmer{requests: make(chan *prompt)}
}

// Confirm shows the dialog and blocks until it is answered or ctx is done.
func (c *Confirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	p := &prompt{title: title, message: message, answer: make(chan bool, 1)}

	select {
	case c.requests <- p:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-p.answer:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (p *prompt) reply(ok bool) {
	select {
	case p.answer <- ok:
	default:
	}
}
