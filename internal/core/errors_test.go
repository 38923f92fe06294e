package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"http 503", NewUpstreamError("llm", 503, errors.New("busy")), true},
		{"http 429", NewUpstreamError("llm", 429, errors.New("slow down")), true},
		{"http 400", NewUpstreamError("llm", 400, errors.New("bad prompt")), false},
		{"network", NewUpstreamError("vector", 0, errors.New("connection refused")), true},
		{"validation", Validationf("message is required"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestUpstreamError_Is(t *testing.T) {
	timeout := NewUpstreamError("llm", 0, context.DeadlineExceeded)
	assert.ErrorIs(t, timeout, ErrUpstreamTimeout)
	assert.NotErrorIs(t, timeout, ErrUpstreamUnavailable)

	notFound := NewUpstreamError("vector", 404, errors.New("missing"))
	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.True(t, IsUpstream(notFound))
	assert.False(t, IsTransient(notFound))
}
