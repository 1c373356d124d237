package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jukebox/internal/shared"
)

// SQLiteSlotStore implements [SlotStore] over the slots table.
//
// Durable slots have an empty owner; session slots are owned by the session the store was opened with.
// Every write to a session slot also marks that session as seen, so a long running session does not go idle.
type SQLiteSlotStore struct {
	db        *sql.DB
	sessionID string
	now       func() time.Time
}

// NewSQLiteSlotStore creates a store whose session slots belong to sessionID.
func NewSQLiteSlotStore(db *sql.DB, sessionID string) *SQLiteSlotStore {
	return &SQLiteSlotStore{db: db, sessionID: sessionID, now: time.Now}
}

// SessionID returns the owner of this store's session slots.
func (s *SQLiteSlotStore) SessionID() string { return s.sessionID }

func (s *SQLiteSlotStore) owner(scope Scope) (string, error) {
	switch scope {
	case ScopeDurable:
		return "", nil
	case ScopeSession:
		if s.sessionID == "" {
			return "", fmt.Errorf("%w: no session", shared.ErrInvalidArgument)
		}
		return s.sessionID, nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q", shared.ErrInvalidArgument, scope)
	}
}

// Get returns the payload stored under key, or [shared.ErrSlotNotFound].
func (s *SQLiteSlotStore) Get(ctx context.Context, scope Scope, key string) ([]byte, error) {
	owner, err := s.owner(scope)
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT payload FROM slots WHERE scope = ? AND owner = ? AND key = ?", scope, owner, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrSlotNotFound, scope, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query slot: %w", err)
	}
	return payload, nil
}

// Put replaces the payload stored under key.
func (s *SQLiteSlotStore) Put(ctx context.Context, scope Scope, key string, payload []byte) error {
	owner, err := s.owner(scope)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO slots (scope, owner, key, payload, updated_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (scope, owner, key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	return s.write(ctx, scope, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, scope, owner, key, payload); err != nil {
			return fmt.Errorf("failed to write slot: %w", err)
		}
		return nil
	})
}

// Delete clears the slot. Deleting an empty slot is not an error.
func (s *SQLiteSlotStore) Delete(ctx context.Context, scope Scope, key string) error {
	owner, err := s.owner(scope)
	if err != nil {
		return err
	}

	return s.write(ctx, scope, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM slots WHERE scope = ? AND owner = ? AND key = ?", scope, owner, key); err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		return nil
	})
}

// write runs fn in a transaction, refreshing last_seen_at of the owning session for session slots.
func (s *SQLiteSlotStore) write(ctx context.Context, scope Scope, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if scope == ScopeSession {
		if _, err := tx.ExecContext(ctx,
			"UPDATE sessions SET last_seen_at = ? WHERE id = ? AND ended_at IS NULL",
			s.now().UnixMilli(), s.sessionID); err != nil {
			return fmt.Errorf("failed to touch session: %w", err)
		}
	}
	return tx.Commit()
}
