package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
)

const healthTimeout = 5 * time.Second

type serviceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	VectorIndex serviceCheck  `json:"vectorIndex"`
	Ledger      *serviceCheck `json:"ledger,omitempty"`
	VectorCount int           `json:"vectorCount"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{
		Status:  "ok",
		Version: core.TwinVersion,
	}

	// Vector index
	if s.deps.Index != nil {
		info, err := s.deps.Index.Info(ctx)
		if err != nil {
			resp.VectorIndex = serviceCheck{Status: "error", Message: err.Error()}
			resp.Status = "degraded"
		} else {
			resp.VectorIndex = serviceCheck{Status: "ok"}
			resp.VectorCount = info.Count
		}
	} else {
		resp.VectorIndex = serviceCheck{Status: "unknown"}
	}

	// Sync ledger
	if s.deps.Ledger != nil {
		check := serviceCheck{Status: "ok"}
		if err := s.deps.Ledger.Ping(ctx); err != nil {
			check = serviceCheck{Status: "error", Message: err.Error()}
			resp.Status = "degraded"
		}
		resp.Ledger = &check
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
