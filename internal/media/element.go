package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
)

// bytesPerFrame is the size of one decoded frame: 16-bit little endian stereo.
const bytesPerFrame = 4

// Opener opens an audio reference for reading.
type Opener interface {
	OpenAudio(ctx context.Context, ref string) (io.ReadCloser, int64, error)
}

// ElementOpts configures an [Element].
type ElementOpts struct {
	Logger *log.Logger
	// Tick is the interval between time updates. Defaults to 250ms.
	Tick time.Duration
}

// Element is a single media element backed by an [audio.Player].
type Element struct {
	actx   *audio.Context
	opener Opener
	logger *log.Logger
	tick   time.Duration

	mu       sync.Mutex
	listener player.Listener
	gen      uint64
	src      string
	p        *audio.Player
	cancel   context.CancelFunc
	failed   bool
	ended    bool
	playing  bool
	duration float64
	pending  float64
	volume   float64

	qmu    sync.Mutex
	queue  []event
	notify chan struct{}

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewElement creates an element that plays through actx and fetches audio with opener.
// Call [Element.Close] to stop its goroutines.
func NewElement(actx *audio.Context, opener Opener, opts ElementOpts) *Element {
	e := &Element{
		actx:   actx,
		opener: opener,
		logger: opts.Logger,
		tick:   opts.Tick,
		volume: 1,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(io.Discard)
	}
	if e.tick <= 0 {
		e.tick = 250 * time.Millisecond
	}

	e.wg.Add(2)
	go e.dispatch()
	go e.watch()
	return e
}

// SetListener binds the listener that receives events.
func (e *Element) SetListener(l player.Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// Source returns the assigned source.
func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// Load assigns src and starts fetching it. An empty src unloads the element.
func (e *Element) Load(src string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	e.reset()
	e.src = src
	if src == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.load(ctx, e.gen, src)
}

// reset releases the current player and in-flight load. Callers hold e.mu.
func (e *Element) reset() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.p != nil {
		if err := e.p.Close(); err != nil {
			e.logger.Debug("failed to close player", "error", err)
		}
		e.p = nil
	}
	e.failed = false
	e.ended = false
	e.playing = false
	e.duration = 0
	e.pending = 0
}

func (e *Element) load(ctx context.Context, gen uint64, src string) {
	p, duration, err := e.open(ctx, src)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		if p != nil {
			p.Close()
		}
		return
	}
	e.cancel = nil
	if err != nil {
		e.failed = true
		e.playing = false
		e.mu.Unlock()
		e.push(event{kind: evError, src: src, err: err})
		return
	}

	e.p = p
	e.duration = duration
	p.SetVolume(e.volume)
	if e.pending > 0 {
		if err := p.SetPosition(seconds(e.pending)); err != nil {
			e.logger.Warn("failed to apply start position", "src", src, "error", err)
		}
		e.pending = 0
	}
	playing := e.playing
	if playing {
		p.Play()
	}
	e.mu.Unlock()

	e.push(event{kind: evMetadata, src: src, value: duration})
	if playing {
		e.push(event{kind: evPlaying, src: src})
	}
}

func (e *Element) open(ctx context.Context, src string) (*audio.Player, float64, error) {
	rc, _, err := e.opener.OpenAudio(ctx, src)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrMediaLoad, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read audio: %v", shared.ErrMediaLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	rate := e.actx.SampleRate()
	stream, err := mp3.DecodeWithSampleRate(rate, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to decode audio: %v", shared.ErrMediaLoad, err)
	}

	p, err := e.actx.NewPlayer(stream)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrMediaLoad, err)
	}
	return p, float64(stream.Length()) / float64(bytesPerFrame*rate), nil
}

// Play starts or resumes playback. Before the source is ready the request is kept.
func (e *Element) Play() {
	e.mu.Lock()
	if e.src == "" {
		e.mu.Unlock()
		return
	}

	src := e.src
	e.playing = true
	switch {
	case e.failed:
		e.playing = false
		e.mu.Unlock()
		e.push(event{kind: evError, src: src, err: fmt.Errorf("%w: source unavailable", shared.ErrMediaLoad)})
		return
	case e.p == nil:
		e.mu.Unlock()
		return
	}

	if e.ended {
		if err := e.p.Rewind(); err != nil {
			e.logger.Warn("failed to rewind", "src", src, "error", err)
		}
		e.ended = false
	}
	e.p.Play()
	e.mu.Unlock()
	e.push(event{kind: evPlaying, src: src})
}

// Pause pauses playback.
func (e *Element) Pause() {
	e.mu.Lock()
	src, p := e.src, e.p
	e.playing = false
	if p != nil {
		p.Pause()
	}
	e.mu.Unlock()

	if src != "" {
		e.push(event{kind: evPaused, src: src})
	}
}

// Paused reports whether playback is not requested.
func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.playing
}

// CurrentTime returns the playhead in seconds.
func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.p == nil {
		return e.pending
	}
	return e.p.Position().Seconds()
}

// SetCurrentTime moves the playhead. Before the source is ready the position is kept.
func (e *Element) SetCurrentTime(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.p == nil {
		e.pending = max(t, 0)
		return
	}
	if err := e.p.SetPosition(seconds(t)); err != nil {
		e.logger.Warn("failed to seek", "src", e.src, "position", t, "error", err)
		return
	}
	e.ended = false
}

// Duration returns the length of the source in seconds, or 0 before it is ready.
func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// SetVolume sets the output volume in [0, 1].
func (e *Element) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	if e.p != nil {
		e.p.SetVolume(v)
	}
}

// Close unloads the source and stops the element's goroutines.
func (e *Element) Close() error {
	e.once.Do(func() {
		e.mu.Lock()
		e.gen++
		e.reset()
		e.src = ""
		e.mu.Unlock()

		close(e.done)
	})
	e.wg.Wait()
	return nil
}

// watch reports progress and completion while playback is requested.
func (e *Element) watch() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			if ev, ok := e.poll(); ok {
				e.push(ev)
			}
		}
	}
}

func (e *Element) poll() (event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.p == nil || !e.playing || e.ended {
		return event{}, false
	}
	if !e.p.IsPlaying() {
		e.ended = true
		e.playing = false
		return event{kind: evEnded, src: e.src}, true
	}
	return event{kind: evTimeUpdate, src: e.src, value: e.p.Position().Seconds()}, true
}

func seconds(t float64) time.Duration {
	return time.Duration(t * float64(time.Second))
}

var _ player.Media = (*Element)(nil)
