// Package repositories persists the player's client-side state as typed key-value slots.
//
// A slot lives in one of two scopes: session slots are cleared when the session ends, durable
// slots survive restarts. Two [SlotStore] backends are provided:
//   - [SQLiteSlotStore] : slots table owned by a row in the sessions table
//   - [RedisSlotStore] : one key per slot, session keys expire with the session
//
// On top of the raw stores, [Read] and [Write] encode values in a versioned envelope
// ({"v":1,"data":...}) keyed by typed [Key] values ([PlaybackStateKey], [LikeSetKey]).
// Entries that fail to decode or carry another version read as absent.
// The authenticated-session marker is kept by [MarkerStore] as a signed token.
//
// Sessions are opened with [SessionRepository.Open], which reuses the most recent session seen within
// the idle timeout and otherwise starts a new one, purging the session slots of expired ones.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
