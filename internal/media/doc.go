// Package media plays mp3 audio streamed from the data service through an ebiten audio context.
//
// An [Element] satisfies the player's media contract: every call returns immediately, loads run in
// the background, and events reach the bound listener from a single dispatcher goroutine in the
// order they happened. Each event carries the source it belongs to.
package media
