package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "twin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncLedger_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	ledger := NewSyncLedger(newTestDB(t))

	state, err := ledger.Get(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, state, "unknown fragment")

	require.NoError(t, ledger.Record(ctx, core.SyncState{
		FragmentID:  "1",
		VectorID:    "cms_chunk_1",
		ContentHash: "h1",
		Status:      core.SyncStatusSynced,
	}))

	state, err = ledger.Get(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "cms_chunk_1", state.VectorID)
	assert.Equal(t, "h1", state.ContentHash)
	assert.Equal(t, core.SyncStatusSynced, state.Status)
	assert.Zero(t, state.Attempts)
}

func TestSyncLedger_FailuresKeepLastGoodHash(t *testing.T) {
	ctx := context.Background()
	ledger := NewSyncLedger(newTestDB(t))

	require.NoError(t, ledger.Record(ctx, core.SyncState{
		FragmentID: "1", VectorID: "cms_chunk_1", ContentHash: "h1", Status: core.SyncStatusSynced,
	}))
	for i := 0; i < 2; i++ {
		require.NoError(t, ledger.Record(ctx, core.SyncState{
			FragmentID: "1", VectorID: "cms_chunk_1", ContentHash: "h2",
			Status: core.SyncStatusFailed, LastError: "timeout",
		}))
	}

	state, err := ledger.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, core.SyncStatusFailed, state.Status)
	assert.Equal(t, "h1", state.ContentHash)
	assert.Equal(t, 2, state.Attempts)

	failed, err := ledger.ListFailed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "timeout", failed[0].LastError)

	// success resets the counter
	require.NoError(t, ledger.Record(ctx, core.SyncState{
		FragmentID: "1", VectorID: "cms_chunk_1", ContentHash: "h2", Status: core.SyncStatusSynced,
	}))
	state, err = ledger.Get(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, state.Attempts)
	assert.Equal(t, "h2", state.ContentHash)
}

func TestMessagesRepo_Exchanges(t *testing.T) {
	ctx := context.Background()
	repo := NewMessagesRepo(newTestDB(t))
	now := time.Now().UTC()

	for i, q := range []string{"first?", "second?"} {
		require.NoError(t, repo.AddExchange(ctx, core.Exchange{
			SessionID:    "s1",
			Language:     "en",
			Pattern:      core.PatternDirect,
			ResultsFound: i,
			Question:     core.Turn{Role: core.RoleUser, Text: q, Timestamp: now},
			Answer:       core.Turn{Role: core.RoleAssistant, Text: "answer " + q, Timestamp: now},
		}))
	}

	turns, err := repo.GetTurns(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "answer first?", turns[0].Text)
	assert.Equal(t, "second?", turns[1].Text)
	assert.Equal(t, core.RoleAssistant, turns[2].Role)

	n, err := repo.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
