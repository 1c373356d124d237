// Package tasks implements the visitor-side work that reaches beyond the player: like sync and downloads.
//
// # Likes
//
// [LikeSync.Toggle] flips a track in the durable like set, persists the whole set, updates the
// like glyph and only then tells the data service. The local set is authoritative: a failed
// notification is logged and never rolled back.
//
// # Downloads
//
// [Downloader.Download] saves one track as "<title> - <artist>.mp3". [Downloader.BulkDownload]
// runs a rate-limited worker pool over many tracks and writes a JSON manifest of the results.
//
// # Progress Reporting
//
// Long-running operations report [ProgressUpdate] values on an optional channel. Sends use select
// with default, so a slow reader drops updates instead of stalling the work.
package tasks
