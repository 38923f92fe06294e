package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
)

type SyncLedger struct {
	db *sql.DB
}

func NewSyncLedger(db *sql.DB) *SyncLedger {
	return &SyncLedger{db: db}
}

// Get returns the ledger row for a fragment, or nil when the fragment was never synced.
func (l *SyncLedger) Get(ctx context.Context, fragmentID string) (*core.SyncState, error) {
	query := `SELECT fragment_id, vector_id, content_hash, status, last_error, attempts, updated_at
		FROM sync_state WHERE fragment_id = ?`

	var s core.SyncState
	err := l.db.QueryRowContext(ctx, query, fragmentID).Scan(
		&s.FragmentID, &s.VectorID, &s.ContentHash, &s.Status, &s.LastError, &s.Attempts, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return &s, nil
}

// Record upserts the outcome of a sync attempt. Failed attempts increment the counter,
// any success resets it.
func (l *SyncLedger) Record(ctx context.Context, s core.SyncState) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	attempts := 0
	if s.Status == core.SyncStatusFailed {
		attempts = 1
	}

	query := `INSERT INTO sync_state (fragment_id, vector_id, content_hash, status, last_error, attempts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fragment_id) DO UPDATE SET
			vector_id = excluded.vector_id,
			content_hash = CASE WHEN excluded.status = 'failed' THEN sync_state.content_hash ELSE excluded.content_hash END,
			status = excluded.status,
			last_error = excluded.last_error,
			attempts = CASE WHEN excluded.status = 'failed' THEN sync_state.attempts + 1 ELSE 0 END,
			updated_at = excluded.updated_at`

	_, err := l.db.ExecContext(ctx, query,
		s.FragmentID, s.VectorID, s.ContentHash, string(s.Status), s.LastError, attempts, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync state: %w", err)
	}
	return nil
}

// ListFailed returns the most recently failed fragments first.
func (l *SyncLedger) ListFailed(ctx context.Context, limit int) ([]core.SyncState, error) {
	query := `SELECT fragment_id, vector_id, content_hash, status, last_error, attempts, updated_at
		FROM sync_state WHERE status = ? ORDER BY updated_at DESC LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, string(core.SyncStatusFailed), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed syncs: %w", err)
	}
	defer rows.Close()

	var states []core.SyncState
	for rows.Next() {
		var s core.SyncState
		if err := rows.Scan(&s.FragmentID, &s.VectorID, &s.ContentHash, &s.Status, &s.LastError, &s.Attempts, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// Ping reports whether the ledger database is reachable.
func (l *SyncLedger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
