package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/providers/content"
	"github.com/sandevgo/profiletwin/internal/service/indexsync"
	"github.com/sandevgo/profiletwin/pkg/log"
)

const (
	defaultFailedLimit = 50
	maxFailedLimit     = 500
)

// webhookPayload accepts either a raw content-store document or a core fragment.
type webhookPayload struct {
	Operation core.ChangeOperation  `json:"operation"`
	Doc       *content.Doc          `json:"doc,omitempty"`
	Fragment  *core.ContentFragment `json:"fragment,omitempty"`
}

func (p webhookPayload) event() (core.ChangeEvent, error) {
	if !p.Operation.IsValid() {
		return core.ChangeEvent{}, core.Validationf("unknown operation %q", p.Operation)
	}
	ev := core.ChangeEvent{Operation: p.Operation}
	switch {
	case p.Doc != nil:
		ev.Fragment = p.Doc.Fragment()
	case p.Fragment != nil:
		ev.Fragment = *p.Fragment
	default:
		return core.ChangeEvent{}, core.Validationf("doc or fragment is required")
	}
	if ev.Fragment.ID == "" {
		return core.ChangeEvent{}, core.Validationf("fragment id is required")
	}
	return ev, nil
}

func (s *Server) handleContentWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret != "" && !secretEqual(r.Header.Get("X-Webhook-Secret"), s.webhookSecret) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload webhookPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ev, err := payload.event()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The content store does not wait for the index.
	ctx := log.WithFields(context.WithoutCancel(r.Context()),
		"fragment_id", ev.Fragment.ID,
		"operation", string(ev.Operation),
	)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.deps.Sync.OnChange(ctx, ev); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("content sync failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	report, err := s.deps.Sync.Resync(ctx)
	if err != nil {
		if errors.Is(err, indexsync.ErrNoSource) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.FromCtx(ctx).Error().Err(err).Msg("resync failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSyncFailures(w http.ResponseWriter, r *http.Request) {
	limit := defaultFailedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxFailedLimit)
	}

	failed, err := s.deps.Sync.Failed(r.Context(), limit)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("list sync failures")
		writeError(w, http.StatusInternalServerError, "failed to read sync ledger")
		return
	}
	if failed == nil {
		failed = []core.SyncState{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"failed": failed,
		"count":  len(failed),
	})
}
