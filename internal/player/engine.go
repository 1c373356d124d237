package player

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
)

// EngineOpts configures a new [Engine].
type EngineOpts struct {
	Media    Media
	Resolver Resolver
	Display  Display // nil renders nothing
	Logger   *log.Logger
	// ResolveURL turns a record's audio or artwork path into something the media can load.
	ResolveURL func(ref string) string
	// Volume is the initial volume in [0, 1].
	Volume float64
}

// Engine is the single transport over one [Media].
//
// All methods are safe for concurrent use. The engine implements [Listener]; bind it to the media
// it was created with.
type Engine struct {
	mu sync.Mutex

	media      Media
	resolver   Resolver
	display    Display
	logger     *log.Logger
	resolveURL func(string) string

	state    State
	fallback State // restored when a load fails
	source   string
	track    models.Track
	loaded   bool
	np       NowPlaying
	playlist models.Playlist
	index    int
	elapsed  float64
	duration float64
	volume   float64

	pendingSeek float64
	hasPending  bool
}

// NewEngine creates an idle engine over opts.Media.
func NewEngine(opts EngineOpts) *Engine {
	e := &Engine{
		media:      opts.Media,
		resolver:   opts.Resolver,
		display:    opts.Display,
		logger:     opts.Logger,
		resolveURL: opts.ResolveURL,
		state:      Idle,
		fallback:   Idle,
	}
	if e.display == nil {
		e.display = nopDisplay{}
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(io.Discard)
	}
	if e.resolveURL == nil {
		e.resolveURL = func(ref string) string { return ref }
	}

	e.setVolume(opts.Volume)
	return e
}

// Play starts track within playlist at offset seconds.
//
// The cursor is the position of track in playlist, or 0 when track is not a member. The media
// source is only reassigned when it differs from the loaded one.
func (e *Engine) Play(track models.Track, playlist models.Playlist, offset float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	index := playlist.IndexOf(track.ID)
	if index < 0 {
		index = 0
	}
	e.playAt(track, playlist.Clone(), index, offset)
}

func (e *Engine) playAt(track models.Track, playlist models.Playlist, index int, offset float64) {
	src := e.resolveURL(track.AudioURL)
	if src == "" {
		e.logger.Warn("track has no audio", "track", track.ID, "title", track.Title)
		return
	}

	e.fallback = Idle
	if e.loaded {
		e.fallback = Paused
	}

	e.track = track
	e.loaded = true
	e.playlist = playlist
	e.index = index

	artist := e.artistName(track.ArtistID)
	e.np = NowPlaying{
		TrackID:      track.ID,
		Title:        track.Title,
		Artist:       artist,
		ArtworkURL:   e.resolveURL(track.ArtworkURL),
		AudioURL:     src,
		DownloadName: shared.DownloadName(track.Title, artist),
	}
	e.display.NowPlaying(e.np)
	e.display.Reveal()

	offset = nonNegative(offset)
	if src != e.source || e.media.Source() != src {
		e.source = src
		e.duration = 0
		e.elapsed = 0
		e.hasPending = false
		e.media.Load(src)
		if offset > 0 {
			e.pendingSeek, e.hasPending = offset, true
		}
	} else {
		e.seek(offset)
	}

	wasPlaying := e.state == Playing && !e.media.Paused()
	e.media.Play()
	if wasPlaying {
		e.logger.Debug("resumed current source", "track", track.ID)
	} else {
		e.setState(Loading)
	}
	e.display.Progress(e.currentElapsed(), e.duration)
	e.logger.Info("play", "track", track.ID, "title", track.Title, "index", index, "offset", offset)
}

// TogglePlayPause flips between playing and paused. It does nothing until a source is loaded.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == "" {
		return
	}
	if e.media.Paused() {
		e.fallback = Paused
		e.media.Play()
		e.setState(Playing)
	} else {
		e.media.Pause()
		e.setState(Paused)
	}
}

// Next plays the following playlist entry, wrapping to the start.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(1)
}

// Prev plays the preceding playlist entry, wrapping to the end.
func (e *Engine) Prev() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(-1)
}

func (e *Engine) step(delta int) bool {
	n := len(e.playlist)
	if n == 0 {
		return false
	}
	index := ((e.index+delta)%n + n) % n
	id := e.playlist[index]

	if e.resolver == nil {
		e.logger.Warn("no resolver for playlist entry", "track", id)
		return false
	}
	track, ok := e.resolver.Track(id)
	if !ok {
		e.logger.Warn("playlist entry not in catalog", "track", id, "index", index)
		return false
	}
	e.playAt(track, e.playlist, index, 0)
	return true
}

// Seek moves to seconds, clamped to [0, duration].
//
// Before the duration is known the request is kept and applied once metadata arrives;
// a later request replaces an earlier one.
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == "" {
		return
	}
	if e.duration <= 0 {
		e.pendingSeek, e.hasPending = nonNegative(seconds), true
		return
	}
	e.seek(seconds)
	e.display.Progress(e.elapsed, e.duration)
}

// SeekFraction moves to fraction f of the duration. It is ignored before the duration is known.
func (e *Engine) SeekFraction(f float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == "" || e.duration <= 0 {
		e.logger.Debug("seek ignored, duration unknown", "fraction", f)
		return
	}
	e.seek(clamp(f, 0, 1) * e.duration)
	e.display.Progress(e.elapsed, e.duration)
}

func (e *Engine) seek(seconds float64) {
	if e.duration <= 0 {
		if seconds > 0 {
			e.pendingSeek, e.hasPending = seconds, true
		}
		return
	}
	t := clamp(seconds, 0, e.duration)
	e.media.SetCurrentTime(t)
	e.elapsed = t
	e.hasPending = false
}

// SetVolume sets the volume, clamped to [0, 1].
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setVolume(v)
}

func (e *Engine) setVolume(v float64) {
	e.volume = clamp(v, 0, 1)
	if e.media != nil {
		e.media.SetVolume(e.volume)
	}
	e.display.Volume(GlyphFor(e.volume))
}

// Volume returns the current volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// State returns the transport state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the track under the cursor, if any.
func (e *Engine) Current() (models.Track, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track, e.loaded
}

// Snapshot returns a consistent copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		State:     e.state,
		StateName: e.state.String(),
		Track:     e.track,
		Playlist:  e.playlist.Clone(),
		Index:     e.index,
		Elapsed:   e.currentElapsed(),
		Duration:  e.duration,
		Volume:    e.volume,
	}
	if e.loaded {
		np := e.np
		s.NowPlaying = &np
	}
	return s
}

func (e *Engine) currentElapsed() float64 {
	if e.hasPending {
		return e.pendingSeek
	}
	if e.duration > 0 && e.source != "" {
		return max(e.elapsed, e.media.CurrentTime())
	}
	return e.elapsed
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.logger.Debug("transport", "from", e.state, "to", s)
	e.state = s
	e.display.Transport(s)
}

func (e *Engine) artistName(id int64) string {
	if e.resolver == nil {
		return ""
	}
	return e.resolver.ArtistName(id)
}

// stale reports whether an event for src belongs to a superseded source.
func (e *Engine) stale(src string) bool {
	return src == "" || src != e.source
}

// HandleMetadata records the duration and applies a deferred seek.
func (e *Engine) HandleMetadata(src string, duration float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(src) {
		return
	}
	e.duration = nonNegative(duration)
	if e.hasPending {
		e.seek(e.pendingSeek)
	}
	e.display.Progress(e.elapsed, e.duration)
}

// HandlePlaying marks the transport as playing.
func (e *Engine) HandlePlaying(src string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(src) {
		return
	}
	e.setState(Playing)
}

// HandlePaused marks the transport as paused.
func (e *Engine) HandlePaused(src string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(src) || !e.state.Active() {
		return
	}
	e.setState(Paused)
}

// HandleTimeUpdate records playback progress.
func (e *Engine) HandleTimeUpdate(src string, seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(src) || e.hasPending {
		return
	}
	e.elapsed = nonNegative(seconds)
	e.display.Progress(e.elapsed, e.duration)
}

// HandleEnded advances to the next playlist entry, wrapping to the start.
func (e *Engine) HandleEnded(src string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(src) {
		return
	}
	e.setState(Ended)
	e.elapsed = e.duration
	if !e.step(1) {
		e.setState(Idle)
	}
}

// HandleError logs a failed load or playback and restores the state held before the request.
// The cursor does not move.
func (e *Engine) HandleError(src string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(src) {
		return
	}
	e.logger.Error("media failed", "src", src, "track", e.track.ID, "error", err)
	e.hasPending = false
	e.setState(e.fallback)
}
