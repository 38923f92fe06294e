package indexsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
)

// Worker mirrors active content fragments into the vector index.
type Worker struct {
	index   core.VectorIndex
	lister  core.VectorLister
	source  core.ContentSource
	ledger  core.SyncLedger
	timeout time.Duration
	workers int
}

// NewWorker builds a sync worker. source and ledger are optional: without a source only
// change events are handled, without a ledger every event is applied.
func NewWorker(
	index core.VectorIndex,
	source core.ContentSource,
	ledger core.SyncLedger,
	cfg *config.ContentConfig,
) *Worker {
	w := &Worker{
		index:   index,
		source:  source,
		ledger:  ledger,
		timeout: cfg.SyncTimeout,
		workers: cfg.ResyncWorkers,
	}
	if lister, ok := index.(core.VectorLister); ok {
		w.lister = lister
	}
	if w.workers < 1 {
		w.workers = 1
	}
	return w
}

// OnChange applies one content-store notification. Errors wrap core.ErrSync and are
// meant to be logged by the caller, never surfaced to the content mutation.
func (w *Worker) OnChange(ctx context.Context, ev core.ChangeEvent) error {
	if !ev.Operation.IsValid() {
		return core.Validationf("unknown operation %q", ev.Operation)
	}
	if ev.Fragment.ID == "" {
		return core.Validationf("fragment id is required")
	}

	ctx = log.WithFields(ctx, "fragment_id", ev.Fragment.ID, "operation", string(ev.Operation))

	ctx, cancel := w.opContext(ctx)
	defer cancel()

	if ev.Operation == core.OpDelete || !ev.Fragment.Active {
		return w.remove(ctx, ev.Fragment.ID)
	}

	hash := ContentHash(ev.Fragment)
	if w.unchanged(ctx, ev.Fragment.ID, hash) {
		log.FromCtx(ctx).Debug().Msg("fragment unchanged, sync skipped")
		return nil
	}
	return w.upsert(ctx, ev.Fragment)
}

// Failed lists ledger entries whose last sync attempt failed.
func (w *Worker) Failed(ctx context.Context, limit int) ([]core.SyncState, error) {
	if w.ledger == nil {
		return nil, nil
	}
	return w.ledger.ListFailed(ctx, limit)
}

func (w *Worker) upsert(ctx context.Context, f core.ContentFragment) error {
	logger := log.FromCtx(ctx)
	record := BuildRecord(f)
	hash, _ := record.Metadata["content_hash"].(string)

	if err := w.index.Upsert(ctx, record); err != nil {
		w.record(ctx, core.SyncState{
			FragmentID: f.ID,
			VectorID:   record.ID,
			Status:     core.SyncStatusFailed,
			LastError:  err.Error(),
		})
		return fmt.Errorf("%w: upsert %s: %w", core.ErrSync, record.ID, err)
	}

	w.record(ctx, core.SyncState{
		FragmentID:  f.ID,
		VectorID:    record.ID,
		ContentHash: hash,
		Status:      core.SyncStatusSynced,
	})
	logger.Info().Str("vector_id", record.ID).Msg("fragment synced")
	return nil
}

func (w *Worker) remove(ctx context.Context, fragmentID string) error {
	logger := log.FromCtx(ctx)
	vectorID := core.VectorID(fragmentID)

	if err := w.index.Delete(ctx, vectorID); err != nil && !errors.Is(err, core.ErrNotFound) {
		w.record(ctx, core.SyncState{
			FragmentID: fragmentID,
			VectorID:   vectorID,
			Status:     core.SyncStatusFailed,
			LastError:  err.Error(),
		})
		return fmt.Errorf("%w: delete %s: %w", core.ErrSync, vectorID, err)
	}

	w.record(ctx, core.SyncState{
		FragmentID: fragmentID,
		VectorID:   vectorID,
		Status:     core.SyncStatusDeleted,
	})
	logger.Info().Str("vector_id", vectorID).Msg("fragment removed from index")
	return nil
}

func (w *Worker) unchanged(ctx context.Context, fragmentID, hash string) bool {
	if w.ledger == nil {
		return false
	}
	state, err := w.ledger.Get(ctx, fragmentID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("sync ledger lookup failed")
		return false
	}
	return state != nil && state.Status == core.SyncStatusSynced && state.ContentHash == hash
}

// record writes the ledger. The ledger is advisory, so failures are only logged.
func (w *Worker) record(ctx context.Context, state core.SyncState) {
	if w.ledger == nil {
		return
	}
	if err := w.ledger.Record(context.WithoutCancel(ctx), state); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record sync state")
	}
}

func (w *Worker) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.timeout > 0 {
		return context.WithTimeout(ctx, w.timeout)
	}
	return context.WithCancel(ctx)
}
