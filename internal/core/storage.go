package core

import (
	"context"
	"time"
)

type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusDeleted SyncStatus = "deleted"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncState is the ledger row kept for every fragment the worker has touched.
type SyncState struct {
	FragmentID  string     `json:"fragment_id"`
	VectorID    string     `json:"vector_id"`
	ContentHash string     `json:"content_hash"`
	Status      SyncStatus `json:"status"`
	LastError   string     `json:"last_error,omitempty"`
	Attempts    int        `json:"attempts"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type SyncLedger interface {
	Get(ctx context.Context, fragmentID string) (*SyncState, error)
	Record(ctx context.Context, state SyncState) error
	ListFailed(ctx context.Context, limit int) ([]SyncState, error)
}

type SessionStore interface {
	Lock(sessionID string) (unlock func())
	History(sessionID string) ([]Turn, string, bool)
	Append(sessionID, language string, turns ...Turn)
	Seed(sessionID string, turns []Turn)
	Reset(sessionID string)
}

// Exchange is one answered question as recorded in the transcript.
type Exchange struct {
	SessionID    string
	Language     string
	Pattern      Pattern
	ResultsFound int
	Degraded     bool
	Question     Turn
	Answer       Turn
}

type TranscriptRepository interface {
	AddExchange(ctx context.Context, ex Exchange) error
	GetTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	CountSessions(ctx context.Context) (int, error)
}
