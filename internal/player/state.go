package player

import (
	"math"

	"github.com/desertthunder/jukebox/internal/models"
)

// State is the transport state of the [Engine].
type State int

const (
	Idle    State = iota // no track loaded
	Loading              // source assigned, playback requested
	Playing              // media reported playback
	Paused               // paused by the user, or stopped after a failed load
	Ended                // media reported completion; the engine advances immediately
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Active reports whether playback is requested or running.
func (s State) Active() bool {
	return s == Loading || s == Playing
}

// VolumeGlyph is the indicator shown next to the volume control.
type VolumeGlyph int

const (
	VolumeMute VolumeGlyph = iota
	VolumeLow
	VolumeHigh
)

// GlyphFor picks the indicator for volume v: mute at 0, low up to 0.5, high above.
func GlyphFor(v float64) VolumeGlyph {
	switch {
	case v <= 0 || math.IsNaN(v):
		return VolumeMute
	case v <= 0.5:
		return VolumeLow
	default:
		return VolumeHigh
	}
}

// String returns the icon class name.
func (g VolumeGlyph) String() string {
	switch g {
	case VolumeMute:
		return "volume-mute"
	case VolumeLow:
		return "volume-down"
	default:
		return "volume-up"
	}
}

// Icon returns a terminal-friendly symbol for the glyph.
func (g VolumeGlyph) Icon() string {
	switch g {
	case VolumeMute:
		return "🔇"
	case VolumeLow:
		return "🔉"
	default:
		return "🔊"
	}
}

// NowPlaying is the card shown for the current track.
type NowPlaying struct {
	TrackID      int64  `json:"track_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	ArtworkURL   string `json:"artwork_url"`
	AudioURL     string `json:"audio_url"`
	DownloadName string `json:"download_name"`
}

// Snapshot is a consistent copy of the engine's state.
type Snapshot struct {
	State      State           `json:"-"`
	StateName  string          `json:"state"`
	NowPlaying *NowPlaying     `json:"now_playing,omitempty"`
	Track      models.Track    `json:"-"`
	Playlist   models.Playlist `json:"playlist"`
	Index      int             `json:"current_index"`
	Elapsed    float64         `json:"elapsed_seconds"`
	Duration   float64         `json:"duration_seconds"`
	Volume     float64         `json:"volume"`
}

// PlaybackState returns the resumable part of the snapshot.
func (s Snapshot) PlaybackState() models.PlaybackState {
	return models.PlaybackState{Playlist: s.Playlist.Clone(), CurrentIndex: s.Index, ElapsedSeconds: s.Elapsed}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func nonNegative(v float64) float64 {
	return clamp(v, 0, math.Inf(1))
}
