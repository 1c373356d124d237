package player

import "github.com/desertthunder/jukebox/internal/models"

// Media is a single playable element.
//
// Calls return immediately; results are reported later through the [Listener] the element was bound to.
// Load("") unloads the current source.
type Media interface {
	Source() string
	Load(src string)
	Play()
	Pause()
	Paused() bool
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64 // 0 until metadata is known
	SetVolume(v float64)
}

// Listener receives media events. src identifies the source the event belongs to.
type Listener interface {
	HandleMetadata(src string, duration float64)
	HandlePlaying(src string)
	HandlePaused(src string)
	HandleTimeUpdate(src string, seconds float64)
	HandleEnded(src string)
	HandleError(src string, err error)
}

// Display renders the player UI. Implementations must not call back into the [Engine].
type Display interface {
	NowPlaying(np NowPlaying)
	Reveal()
	Transport(s State)
	Progress(elapsed, duration float64)
	Volume(g VolumeGlyph)
}

// Resolver looks up catalog records for playlist ids.
type Resolver interface {
	Track(id int64) (models.Track, bool)
	ArtistName(id int64) string
}

type nopDisplay struct{}

func (nopDisplay) NowPlaying(NowPlaying)     {}
func (nopDisplay) Reveal()                   {}
func (nopDisplay) Transport(State)           {}
func (nopDisplay) Progress(float64, float64) {}
func (nopDisplay) Volume(VolumeGlyph)        {}
