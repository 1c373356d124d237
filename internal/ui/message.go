package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogLoaded MsgKind = iota
	MsgDisplayChanged
	MsgPromptRequested
	MsgLikeToggled
	MsgGlyphsChanged
	MsgDownloaded
	MsgProgressUpdate
	MsgBulkComplete
	MsgStatus
)

type catalogLoaded struct {
	library *catalog.Library
	likes   models.LikeSet
	err     error
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(library *catalog.Library, likes models.LikeSet, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogLoaded{library, likes, err}}
}

// displayChangedMsg is the constructor for [MsgDisplayChanged]
func displayChangedMsg() Msg {
	return Msg{kind: MsgDisplayChanged}
}

// promptRequestedMsg is the constructor for [MsgPromptRequested]
func promptRequestedMsg(p *prompt) Msg {
	return Msg{kind: MsgPromptRequested, data: p}
}

type likeToggled struct {
	id    int64
	liked bool
	err   error
}

// likeToggledMsg is the constructor for [MsgLikeToggled]
func likeToggledMsg(id int64, liked bool, err error) Msg {
	return Msg{kind: MsgLikeToggled, data: likeToggled{id, liked, err}}
}

// glyphsChangedMsg is the constructor for [MsgGlyphsChanged]
func glyphsChangedMsg() Msg {
	return Msg{kind: MsgGlyphsChanged}
}

type downloaded struct {
	track models.Track
	path  string
	err   error
}

// downloadedMsg is the constructor for [MsgDownloaded]
func downloadedMsg(track models.Track, path string, err error) Msg {
	return Msg{kind: MsgDownloaded, data: downloaded{track, path, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

type bulkComplete struct {
	result *tasks.BulkDownloadResult
	err    error
}

// bulkCompleteMsg is the constructor for [MsgBulkComplete]
func bulkCompleteMsg(result *tasks.BulkDownloadResult, err error) Msg {
	return Msg{kind: MsgBulkComplete, data: bulkComplete{result, err}}
}

type status struct {
	text string
	err  error
}

// statusMsg is the constructor for [MsgStatus]
func statusMsg(text string, err error) Msg {
	return Msg{kind: MsgStatus, data: status{text, err}}
}
