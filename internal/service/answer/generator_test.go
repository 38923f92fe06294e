package answer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/retry"
	"github.com/sandevgo/profiletwin/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promptPath string

func (p promptPath) GetSystemPromptPath() string { return string(p) }

var testBlocks = []core.ContextBlock{
	{FragmentID: "12", Title: "Work", Text: "Backend engineer at Acme since 2021."},
}

func newTestGenerator(provider core.CompletionProvider, historyTurns int) *Generator {
	g := NewGenerator(
		provider,
		NewSysPrompt(promptPath(filepath.Join(os.TempDir(), "missing-twin-prompt.md")), "en"),
		&config.LLMConfig{Model: "test-model", MaxTokens: 200, Temperature: 0.5},
		&config.RAGConfig{GenerationRetries: 2, HistoryTurns: historyTurns, GenerationTimeout: time.Second},
	)
	g.retrier = retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	}).WithRetryable(core.IsTransient)
	return g
}

func TestGenerate_StripsQuotes(t *testing.T) {
	provider := &test.MockProvider{
		CompleteFunc: func(ctx context.Context, req core.CompletionRequest) (string, error) {
			return `"Hello world"`, nil
		},
	}
	g := newTestGenerator(provider, 6)

	res := g.Generate(context.Background(), testBlocks, nil, "hi", "en")

	assert.Equal(t, "Hello world", res.Text)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
}

func TestGenerate_BuildsBoundedPrompt(t *testing.T) {
	provider := &test.MockProvider{}
	g := newTestGenerator(provider, 2)

	history := []core.Turn{
		{Role: core.RoleUser, Text: "first question"},
		{Role: core.RoleAssistant, Text: "first answer"},
		{Role: core.RoleUser, Text: "second question"},
		{Role: core.RoleAssistant, Text: "second answer"},
	}
	g.Generate(context.Background(), testBlocks, history, "where do you work?", "en")

	calls := provider.Calls()
	require.Len(t, calls, 1)
	req := calls[0]

	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, 200, req.MaxTokens)
	assert.Equal(t, 0.5, req.Temperature)

	require.Len(t, req.Messages, 5)
	assert.Equal(t, core.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "ONLY from the facts")
	assert.Contains(t, req.Messages[1].Content, "[12] Work\nBackend engineer at Acme since 2021.")
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "second question"}, req.Messages[2])
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "second answer"}, req.Messages[3])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "where do you work?"}, req.Messages[4])
}

func TestGenerate_HistoryUsesWorkingLanguage(t *testing.T) {
	provider := &test.MockProvider{}
	g := newTestGenerator(provider, 6)

	history := []core.Turn{
		{Role: core.RoleUser, Text: "aap kya kaam karte ho", WorkingText: "What work do you do?"},
		{Role: core.RoleAssistant, Text: "[hi] I build backends.", WorkingText: "I build backends."},
		{Role: core.RoleUser, Text: "and Go?"},
	}
	g.Generate(context.Background(), testBlocks, history, "since when?", "en")

	req := provider.Calls()[0]
	require.Len(t, req.Messages, 6)
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "What work do you do?"}, req.Messages[2])
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "I build backends."}, req.Messages[3])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "and Go?"}, req.Messages[4])
}

func TestGenerate_MentionsVisitorLanguage(t *testing.T) {
	provider := &test.MockProvider{}
	g := newTestGenerator(provider, 0)

	g.Generate(context.Background(), testBlocks, nil, "what do you do?", "es")

	req := provider.Calls()[0]
	assert.Contains(t, req.Messages[0].Content, "The visitor wrote in Spanish")
	assert.Len(t, req.Messages, 3)
}

func TestGenerate_SystemPromptOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SYSTEM.md")
	require.NoError(t, os.WriteFile(path, []byte("Custom persona."), 0o644))

	provider := &test.MockProvider{}
	g := newTestGenerator(provider, 0)
	g.prompt = NewSysPrompt(promptPath(path), "en")

	g.Generate(context.Background(), testBlocks, nil, "hi", "en")

	assert.Equal(t, "Custom persona.", provider.Calls()[0].Messages[0].Content)
}

func TestGenerate_NoContext(t *testing.T) {
	provider := &test.MockProvider{}
	g := newTestGenerator(provider, 6)

	res := g.Generate(context.Background(), nil, nil, "what is your favourite colour?", "en")

	assert.Equal(t, NoInformationAnswer, res.Text)
	assert.True(t, res.NoInformation)
	assert.False(t, res.Degraded)
	assert.Empty(t, provider.Calls())
}

func TestGenerate_Retries(t *testing.T) {
	tests := []struct {
		name         string
		errs         []error
		wantCalls    int
		wantDegraded bool
	}{
		{
			name:      "recovers after transient failure",
			errs:      []error{core.NewUpstreamError("llm", 503, errors.New("busy"))},
			wantCalls: 2,
		},
		{
			name:      "timeout counts as transient",
			errs:      []error{context.DeadlineExceeded, context.DeadlineExceeded},
			wantCalls: 3,
		},
		{
			name: "gives up after two retries",
			errs: []error{
				core.NewUpstreamError("llm", 500, errors.New("boom")),
				core.NewUpstreamError("llm", 502, errors.New("boom")),
				core.NewUpstreamError("llm", 503, errors.New("boom")),
			},
			wantCalls:    3,
			wantDegraded: true,
		},
		{
			name:         "does not retry client errors",
			errs:         []error{core.NewUpstreamError("llm", 401, errors.New("bad key"))},
			wantCalls:    1,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			provider := &test.MockProvider{
				CompleteFunc: func(ctx context.Context, req core.CompletionRequest) (string, error) {
					calls++
					if calls <= len(tt.errs) {
						return "", tt.errs[calls-1]
					}
					return "fine", nil
				},
			}
			g := newTestGenerator(provider, 6)

			res := g.Generate(context.Background(), testBlocks, nil, "q", "en")

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantDegraded, res.Degraded)
			if tt.wantDegraded {
				assert.Equal(t, FallbackAnswer, res.Text)
				assert.Error(t, res.Err)
			} else {
				assert.Equal(t, "fine", res.Text)
			}
		})
	}
}

func TestGenerate_EmptyCompletionIsRetried(t *testing.T) {
	calls := 0
	provider := &test.MockProvider{
		CompleteFunc: func(ctx context.Context, req core.CompletionRequest) (string, error) {
			calls++
			if calls == 1 {
				return `""`, nil
			}
			return "answer", nil
		},
	}
	g := newTestGenerator(provider, 6)

	res := g.Generate(context.Background(), testBlocks, nil, "q", "en")
	assert.Equal(t, "answer", res.Text)
	assert.Equal(t, 2, calls)
}

func TestGenerate_PerAttemptTimeout(t *testing.T) {
	provider := &test.MockProvider{
		CompleteFunc: func(ctx context.Context, req core.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	g := newTestGenerator(provider, 6)
	g.timeout = 10 * time.Millisecond

	res := g.Generate(context.Background(), testBlocks, nil, "q", "en")
	assert.True(t, res.Degraded)
	assert.Equal(t, 3, res.Attempts)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}
