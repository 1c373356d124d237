// Package models defines the domain entities shared by the jukebox packages.
//
// The package contains two categories of types:
//
// 1. Catalog records: immutable once fetched from the data service
//   - [Track] : Song metadata with artwork and audio references
//   - [Artist] : Artist profile with social links
//   - [User] : Account returned by the login endpoint
//
// 2. Client state: values persisted by the repositories package
//   - [Playlist] : Ordered track ids forming a navigation context
//   - [PlaybackState] : Playlist snapshot, cursor and elapsed time used to resume playback
//   - [LikeSet] : Durable set of liked track ids
//   - [SessionMarker] : Authenticated-session marker consumed by the login gate
package models
