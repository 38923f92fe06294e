package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/answer"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/pkg/log"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// A dropped client must not leave the session half-updated.
	ctx := context.WithoutCancel(r.Context())

	resp, err := s.deps.Chat.Chat(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromCtx(ctx).Error().Err(err).Msg("chat request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    "internal server error",
			Response: answer.FallbackAnswer,
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
