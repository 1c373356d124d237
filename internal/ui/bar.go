package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/shared"
)

const progressWidth = 30

var _ player.Display = (*Bar)(nil)

// Bar is the now-playing bar. It is the engine's [player.Display].
//
// Display calls arrive on engine goroutines; they record state and signal [Bar.Changed] without
// blocking, so the engine never waits on the render loop.
type Bar struct {
	mu       sync.Mutex
	np       player.NowPlaying
	visible  bool
	state    player.State
	elapsed  float64
	duration float64
	volume   player.VolumeGlyph

	changed chan struct{}
}

// NewBar creates a hidden bar.
func NewBar() *Bar {
	return &Bar{changed: make(chan struct{}, 1), volume: player.VolumeHigh}
}

// Changed receives a value after any update. Updates coalesce.
func (b *Bar) Changed() <-chan struct{} { return b.changed }

func (b *Bar) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *Bar) update(fn func()) {
	b.mu.Lock()
	fn()
	b.mu.Unlock()
	b.notify()
}

// NowPlaying shows track metadata.
func (b *Bar) NowPlaying(np player.NowPlaying) { b.update(func() { b.np = np }) }

// Reveal makes the bar visible. It stays visible for the rest of the run.
func (b *Bar) Reveal() { b.update(func() { b.visible = true }) }

// Transport sets the play/pause indicator.
func (b *Bar) Transport(s player.State) { b.update(func() { b.state = s }) }

// Progress sets the elapsed and total time.
func (b *Bar) Progress(elapsed, duration float64) {
	b.update(func() { b.elapsed, b.duration = elapsed, duration })
}

// Volume sets the volume glyph.
func (b *Bar) Volume(g player.VolumeGlyph) { b.update(func() { b.volume = g }) }

// Current returns the track shown in the bar.
func (b *Bar) Current() (player.NowPlaying, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.np, b.visible
}

// View renders the bar, or nothing while hidden.
func (b *Bar) View(width int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.visible {
		return ""
	}

	icon := "▶"
	switch b.state {
	case player.Playing:
		icon = "⏸"
	case player.Loading:
		icon = "…"
	}

	line := fmt.Sprintf("%s  %s - %s  %s / %s %s  %s",
		icon,
		styles.ok.Render(b.np.Title),
		b.np.Artist,
		shared.FormatDuration(b.elapsed),
		shared.FormatDuration(b.duration),
		progressBar(b.elapsed, b.duration, progressWidth),
		b.volume.Icon(),
	)
	if width > 0 {
		return styles.bar.Width(width).Render(line)
	}
	return styles.bar.Render(line)
}

func progressBar(elapsed, duration float64, width int) string {
	filled := 0
	if duration > 0 {
		filled = int(float64(width) * min(max(elapsed/duration, 0), 1))
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
