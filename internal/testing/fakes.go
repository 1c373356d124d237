package testing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/jukebox/internal/models"
)

// LikeCall records one like notification sent to a [FakeCatalog].
type LikeCall struct {
	ID        int64
	Increment bool
}

// FakeCatalog is an in-memory data service.
//
// Audio maps an audio reference to the bytes served for it.
type FakeCatalog struct {
	mu sync.Mutex

	Songs   []models.Track
	Artists []models.Artist
	Audio   map[string][]byte

	SongsErr  error
	ArtistErr error
	LikeErr   error
	AudioErr  error

	likes []LikeCall
}

// NewFakeCatalog creates a catalog serving tracks and artists.
func NewFakeCatalog(tracks []models.Track, artists []models.Artist) *FakeCatalog {
	return &FakeCatalog{Songs: tracks, Artists: artists, Audio: map[string][]byte{}}
}

func (f *FakeCatalog) GetSongs(ctx context.Context) ([]models.Track, error) {
	if f.SongsErr != nil {
		return nil, f.SongsErr
	}
	return slices.Clone(f.Songs), nil
}

func (f *FakeCatalog) GetArtists(ctx context.Context) ([]models.Artist, error) {
	if f.ArtistErr != nil {
		return nil, f.ArtistErr
	}
	return slices.Clone(f.Artists), nil
}

func (f *FakeCatalog) ToggleLike(ctx context.Context, id int64, increment bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes = append(f.likes, LikeCall{ID: id, Increment: increment})
	return f.LikeErr
}

// LikeCalls returns the like notifications received so far.
func (f *FakeCatalog) LikeCalls() []LikeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.likes)
}

func (f *FakeCatalog) OpenAudio(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	if f.AudioErr != nil {
		return nil, 0, f.AudioErr
	}
	f.mu.Lock()
	data, ok := f.Audio[ref]
	f.mu.Unlock()
	if !ok {
		return nil, 0, fmt.Errorf("no audio for %q", ref)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// ResolveURL prefixes relative references with a fixed host.
func (f *FakeCatalog) ResolveURL(ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}
	return "http://catalog.test/" + strings.TrimLeft(ref, "/")
}

// MediaListener receives events from a [FakeMedia].
type MediaListener interface {
	HandleMetadata(src string, duration float64)
	HandlePlaying(src string)
	HandlePaused(src string)
	HandleTimeUpdate(src string, seconds float64)
	HandleEnded(src string)
	HandleError(src string, err error)
}

// FakeMedia is a media element driven by the test.
//
// Calls only record what was asked; events reach the bound listener when the test emits them.
type FakeMedia struct {
	mu       sync.Mutex
	listener MediaListener

	src      string
	paused   bool
	current  float64
	duration float64
	volume   float64

	Loads []string
	Seeks []float64
	Plays int
}

func NewFakeMedia() *FakeMedia {
	return &FakeMedia{paused: true}
}

// Bind sets the listener that emitted events are delivered to.
func (m *FakeMedia) Bind(l MediaListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

func (m *FakeMedia) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *FakeMedia) Load(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = src
	m.paused = true
	m.current = 0
	m.duration = 0
	m.Loads = append(m.Loads, src)
}

func (m *FakeMedia) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	m.Plays++
}

func (m *FakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *FakeMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *FakeMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *FakeMedia) SetCurrentTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = seconds
	m.Seeks = append(m.Seeks, seconds)
}

func (m *FakeMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *FakeMedia) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

// Volume returns the last volume set.
func (m *FakeMedia) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// LoadCount returns how many times a source was assigned.
func (m *FakeMedia) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Loads)
}

func (m *FakeMedia) emit(fn func(l MediaListener, src string)) {
	m.mu.Lock()
	l, src := m.listener, m.src
	m.mu.Unlock()
	if l != nil {
		fn(l, src)
	}
}

// Metadata reports the duration of the current source.
func (m *FakeMedia) Metadata(duration float64) {
	m.mu.Lock()
	m.duration = duration
	m.mu.Unlock()
	m.emit(func(l MediaListener, src string) { l.HandleMetadata(src, duration) })
}

// Playing reports that playback started.
func (m *FakeMedia) Playing() {
	m.emit(func(l MediaListener, src string) { l.HandlePlaying(src) })
}

// Tick advances the playhead to seconds and reports it.
func (m *FakeMedia) Tick(seconds float64) {
	m.mu.Lock()
	m.current = seconds
	m.mu.Unlock()
	m.emit(func(l MediaListener, src string) { l.HandleTimeUpdate(src, seconds) })
}

// Ended reports that the current source finished.
func (m *FakeMedia) Ended() {
	m.mu.Lock()
	m.current = m.duration
	m.paused = true
	m.mu.Unlock()
	m.emit(func(l MediaListener, src string) { l.HandleEnded(src) })
}

// Fail reports that the current source could not be loaded or played.
func (m *FakeMedia) Fail(err error) {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.emit(func(l MediaListener, src string) { l.HandleError(src, err) })
}
