// Package player implements the [Engine], the single authoritative transport over one media element.
//
// # State Machine
//
//	Idle → Loading → Playing ⇄ Paused
//	Playing → Ended → Loading (next track, wrapping to the start of the playlist)
//
// The engine owns a [Media] exclusively; browsing views never touch it and instead hand play
// requests to [Engine.Play] through the bridge package.
//
// # Events
//
// Media calls never block and never call back synchronously. Progress arrives later through the
// [Listener] methods, each tagged with the source it concerns. Events for a source the engine has
// since replaced are dropped, so a slow load cannot overwrite a newer one.
//
// # Display
//
// Every [Engine.Play] pushes the now-playing card to the [Display] before the media is asked to
// start, so the card never shows the previous track once play has returned.
package player
