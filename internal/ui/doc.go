// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is the browsing front-end of the player:
//  1. [TrendingView] : The most played tracks
//  2. [SongsView] : Every track, filterable by title or artist, or one artist's discography
//  3. [ArtistsView] : Artists with their track and play counts
//  4. [LikedView] : Liked tracks, with a bulk download
//
// Views never touch the player engine to start playback: selecting a track publishes a play request
// on the bridge bus, which applies the login gate. Transport keys (play/pause, next, prev, seek,
// volume) drive the engine directly.
//
// The [Bar] is the engine's display. Engine callbacks only record state and signal a channel, which
// the (view) [Model] drains as messages, so rendering never blocks playback. The [Confirmer] shows the
// bridge's login prompt as a dialog in the same way.
//
// Switching views and quitting save the playback state, the way leaving a page does.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
