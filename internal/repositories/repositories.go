package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Scope determines the lifetime of a slot.
type Scope string

const (
	// ScopeSession slots are cleared when the session ends.
	ScopeSession Scope = "session"
	// ScopeDurable slots survive sessions and restarts.
	ScopeDurable Scope = "durable"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeSession || s == ScopeDurable
}

// SlotStore is a scoped key-value store holding opaque payloads.
//
// Get returns [shared.ErrSlotNotFound] when the slot is empty.
type SlotStore interface {
	Get(ctx context.Context, scope Scope, key string) ([]byte, error)
	Put(ctx context.Context, scope Scope, key string, payload []byte) error
	Delete(ctx context.Context, scope Scope, key string) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering (e.g. session #42) and are used for sorting and debugging.
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}
