package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
)

// SchemaVersion is the envelope version written by [Write].
const SchemaVersion = 1

// Key names a typed slot and the scope it lives in.
type Key[T any] struct {
	Name  string
	Scope Scope
}

var (
	// PlaybackStateKey holds the snapshot used to resume playback within a session.
	PlaybackStateKey = Key[models.PlaybackState]{Name: "playback_state", Scope: ScopeSession}
	// LikeSetKey holds the visitor's liked tracks.
	LikeSetKey = Key[models.LikeSet]{Name: "like_set", Scope: ScopeDurable}
	// SessionMarkerKey holds the signed session marker token.
	SessionMarkerKey = Key[string]{Name: "session_marker", Scope: ScopeDurable}
)

type envelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

// Encode wraps v in a versioned envelope.
func Encode[T any](v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slot: %w", err)
	}
	return json.Marshal(envelope{V: SchemaVersion, Data: data})
}

// Decode unwraps a versioned envelope into a T.
//
// Payloads that are not an envelope, carry another version or fail to decode return [shared.ErrInvalidState].
func Decode[T any](payload []byte) (T, error) {
	var (
		zero T
		env  envelope
	)
	if err := json.Unmarshal(payload, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}
	if env.V != SchemaVersion {
		return zero, fmt.Errorf("%w: unsupported version %d", shared.ErrInvalidState, env.V)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, fmt.Errorf("%w: empty data", shared.ErrInvalidState)
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}
	return v, nil
}

// Read loads the value stored under key.
//
// ok is false when the slot is empty or its payload is malformed; err is only set when the store fails.
func Read[T any](ctx context.Context, store SlotStore, key Key[T]) (v T, ok bool, err error) {
	payload, err := store.Get(ctx, key.Scope, key.Name)
	if errors.Is(err, shared.ErrSlotNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}

	v, err = Decode[T](payload)
	if err != nil {
		return v, false, nil
	}
	return v, true, nil
}

// Write stores v under key, replacing any previous value.
func Write[T any](ctx context.Context, store SlotStore, key Key[T], v T) error {
	payload, err := Encode(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key.Scope, key.Name, payload)
}

// Clear empties the slot.
func Clear[T any](ctx context.Context, store SlotStore, key Key[T]) error {
	return store.Delete(ctx, key.Scope, key.Name)
}
