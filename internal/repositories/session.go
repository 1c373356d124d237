package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jukebox/internal/shared"
)

// Session identifies the owner of session-scoped slots.
type Session struct {
	ID         string
	Sequence   int
	StartedAt  time.Time
	LastSeenAt time.Time
}

// SessionRepository manages rows in the sessions table.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Open returns the most recent session seen within idle and marks it active.
//
// When no such session exists, sessions idle for longer are ended, their slots purged,
// and a new session is started.
func (r *SessionRepository) Open(ctx context.Context, idle time.Duration) (*Session, error) {
	now := r.now()
	cutoff := now.Add(-idle)

	s, err := r.latestActive(ctx, cutoff)
	switch {
	case err == nil:
		if err := r.Touch(ctx, s.ID); err != nil {
			return nil, err
		}
		s.LastSeenAt = now
		return s, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	if err := r.endIdle(ctx, cutoff); err != nil {
		return nil, err
	}
	return r.create(ctx)
}

// Touch records activity on the session so it is not considered idle.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET last_seen_at = ? WHERE id = ? AND ended_at IS NULL", r.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// End ends the session and deletes its slots.
func (r *SessionRepository) End(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL", r.now().UnixMilli(), id); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM slots WHERE scope = ? AND owner = ?", ScopeSession, id); err != nil {
		return fmt.Errorf("failed to purge session slots: %w", err)
	}
	return tx.Commit()
}

func (r *SessionRepository) latestActive(ctx context.Context, cutoff time.Time) (*Session, error) {
	query := `
		SELECT id, sequence, started_at, last_seen_at
		FROM sessions
		WHERE ended_at IS NULL AND last_seen_at >= ?
		ORDER BY last_seen_at DESC, sequence DESC
		LIMIT 1
	`
	var (
		s        Session
		started  int64
		lastSeen int64
	)
	if err := r.db.QueryRowContext(ctx, query, cutoff.UnixMilli()).Scan(&s.ID, &s.Sequence, &started, &lastSeen); err != nil {
		return nil, err
	}
	s.StartedAt = time.UnixMilli(started)
	s.LastSeenAt = time.UnixMilli(lastSeen)
	return &s, nil
}

// endIdle ends every open session last seen before cutoff and purges slots owned by ended sessions.
func (r *SessionRepository) endIdle(ctx context.Context, cutoff time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ? WHERE ended_at IS NULL AND last_seen_at < ?",
		r.now().UnixMilli(), cutoff.UnixMilli()); err != nil {
		return fmt.Errorf("failed to end idle sessions: %w", err)
	}

	purge := `
		DELETE FROM slots
		WHERE scope = ? AND owner NOT IN (SELECT id FROM sessions WHERE ended_at IS NULL)
	`
	if _, err := tx.ExecContext(ctx, purge, ScopeSession); err != nil {
		return fmt.Errorf("failed to purge session slots: %w", err)
	}
	return tx.Commit()
}

func (r *SessionRepository) create(ctx context.Context) (*Session, error) {
	sequence, err := NextSequence(ctx, r.db, "sessions")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := r.now()
	s := &Session{ID: shared.GenerateID(), Sequence: sequence, StartedAt: now, LastSeenAt: now}

	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, sequence, started_at, last_seen_at) VALUES (?, ?, ?, ?)",
		s.ID, s.Sequence, now.UnixMilli(), now.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return s, nil
}
