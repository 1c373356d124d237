package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/desertthunder/jukebox/internal/tasks"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track   models.Track
	artist  string
	glyph   tasks.LikeGlyph
	playing bool
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	title := fmt.Sprintf("%s %s", i.glyph.Icon(), i.track.Title)
	if i.playing {
		title = "▶ " + title
	}
	return title
}
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.artist, shared.FormatDuration(float64(i.track.DurationSeconds)))
	if i.track.Genre != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Genre)
	}
	return fmt.Sprintf("%s • %d plays", desc, i.track.PlayCount)
}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
	stats  catalog.ArtistStats
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	desc := fmt.Sprintf("%d tracks • %d plays", i.stats.Tracks, i.stats.Plays)
	if i.stats.Genre != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.stats.Genre)
	}
	return desc
}

func newList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}
