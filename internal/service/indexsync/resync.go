package indexsync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/sandevgo/profiletwin/pkg/srv"
	"golang.org/x/sync/errgroup"
)

const rangePageSize = 100

var ErrNoSource = errors.New("content store not configured")

// ResyncReport summarises a full reconciliation pass.
type ResyncReport struct {
	Active   int `json:"active"`
	Indexed  int `json:"indexed"`
	Upserted int `json:"upserted"`
	Deleted  int `json:"deleted"`
	Failed   int `json:"failed"`
}

// Resync reconciles the index with the content store: gaps and stale records are
// upserted, orphans deleted. Individual failures are counted, not returned.
func (w *Worker) Resync(ctx context.Context) (ResyncReport, error) {
	var report ResyncReport
	logger := log.FromCtx(ctx)

	if w.source == nil {
		return report, ErrNoSource
	}
	if w.lister == nil {
		return report, fmt.Errorf("vector index %T cannot list records", w.index)
	}

	start := time.Now()

	// 1. Active fragments
	fragments, err := w.source.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("list active fragments: %w", err)
	}
	active := make(map[string]core.ContentFragment, len(fragments))
	for _, f := range fragments {
		if f.Active && f.ID != "" {
			active[f.ID] = f
		}
	}
	report.Active = len(active)

	// 2. Indexed records
	indexed, err := w.indexedHashes(ctx)
	if err != nil {
		return report, fmt.Errorf("list vector records: %w", err)
	}
	report.Indexed = len(indexed)

	var upserted, deleted, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	// 3. Gaps and stale records
	for id, f := range active {
		if hash, ok := indexed[id]; ok && hash == ContentHash(f) {
			continue
		}
		g.Go(func() error {
			opCtx, cancel := w.opContext(gctx)
			defer cancel()

			if err := w.upsert(opCtx, f); err != nil {
				logger.Warn().Err(err).Str("fragment_id", id).Msg("resync upsert failed")
				failed.Add(1)
				return nil
			}
			upserted.Add(1)
			return nil
		})
	}

	// 4. Orphans
	for id := range indexed {
		if _, ok := active[id]; ok {
			continue
		}
		g.Go(func() error {
			opCtx, cancel := w.opContext(gctx)
			defer cancel()

			if err := w.remove(opCtx, id); err != nil {
				logger.Warn().Err(err).Str("fragment_id", id).Msg("resync delete failed")
				failed.Add(1)
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	report.Upserted = int(upserted.Load())
	report.Deleted = int(deleted.Load())
	report.Failed = int(failed.Load())

	logger.Info().
		Int("active", report.Active).
		Int("indexed", report.Indexed).
		Int("upserted", report.Upserted).
		Int("deleted", report.Deleted).
		Int("failed", report.Failed).
		Dur("took", time.Since(start)).
		Msg("resync finished")

	return report, ctx.Err()
}

// NewResyncService runs Resync every interval.
func (w *Worker) NewResyncService(interval time.Duration) srv.Service {
	return srv.NewTicker("content-resync", interval, func(ctx context.Context) error {
		_, err := w.Resync(ctx)
		return err
	})
}

// indexedHashes maps fragment ids owned by the worker to the content hash stored with them.
func (w *Worker) indexedHashes(ctx context.Context) (map[string]string, error) {
	hashes := make(map[string]string)
	cursor := ""
	for {
		records, next, err := w.lister.Range(ctx, cursor, rangePageSize)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			id, ok := core.FragmentIDFromVector(r.ID)
			if !ok {
				continue
			}
			hash, _ := r.Metadata["content_hash"].(string)
			hashes[id] = hash
		}
		if next == "" || next == "0" || next == cursor {
			return hashes, nil
		}
		cursor = next
	}
}
