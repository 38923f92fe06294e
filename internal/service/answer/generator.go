package answer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/conv"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/sandevgo/profiletwin/pkg/retry"
)

const (
	FallbackAnswer      = "I'm sorry, I'm having trouble answering right now. Could you try again in a moment?"
	NoInformationAnswer = "I don't have specific information about that in my knowledge base. Could you ask about something more specific, like my technical skills, projects or work experience?"
)

// Result is the generated answer. Degraded is set when the fallback text was used.
type Result struct {
	Text          string
	Degraded      bool
	NoInformation bool
	Attempts      int
	Err           error
}

type Generator struct {
	provider core.CompletionProvider
	prompt   *SysPrompt
	retrier  *retry.Retrier

	model        string
	maxTokens    int
	temperature  float64
	historyTurns int
	timeout      time.Duration
}

func NewGenerator(
	provider core.CompletionProvider,
	prompt *SysPrompt,
	llmCfg *config.LLMConfig,
	ragCfg *config.RAGConfig,
) *Generator {
	retrier := retry.NewRetrier(&retry.Config{
		MaxRetries:    ragCfg.GenerationRetries,
		BackoffFactor: 2,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      4 * time.Second,
		Jitter:        100 * time.Millisecond,
	}).WithRetryable(core.IsTransient)

	return &Generator{
		provider:     provider,
		prompt:       prompt,
		retrier:      retrier,
		model:        llmCfg.Model,
		maxTokens:    llmCfg.MaxTokens,
		temperature:  llmCfg.Temperature,
		historyTurns: ragCfg.HistoryTurns,
		timeout:      ragCfg.GenerationTimeout,
	}
}

// Generate answers question from blocks. It never returns an error: failures yield the
// fallback text with Degraded set, no context yields the no-information text.
func (g *Generator) Generate(
	ctx context.Context,
	blocks []core.ContextBlock,
	history []core.Turn,
	question, detected string,
) Result {
	logger := log.FromCtx(ctx)

	if len(blocks) == 0 {
		return Result{Text: NoInformationAnswer, NoInformation: true}
	}

	req := core.CompletionRequest{
		Messages:    g.buildMessages(blocks, history, question, detected),
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	var (
		text     string
		attempts int
	)
	err := g.retrier.Do(ctx, func() error {
		attempts++
		out, err := g.complete(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempts).Msg("completion failed")
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int("attempts", attempts).Msg("generation failed, using fallback")
		return Result{Text: FallbackAnswer, Degraded: true, Attempts: attempts, Err: err}
	}

	return Result{Text: text, Attempts: attempts}
}

func (g *Generator) complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	out = conv.StripQuotes(out)
	if out == "" {
		return "", core.NewUpstreamError("llm", 502, errors.New("empty completion"))
	}
	return out, nil
}

// buildMessages lays out system instructions, context, the last K turns and the question.
func (g *Generator) buildMessages(blocks []core.ContextBlock, history []core.Turn, question, detected string) []core.Message {
	messages := g.prompt.Build(blocks, detected)

	switch {
	case g.historyTurns <= 0:
		history = nil
	case len(history) > g.historyTurns:
		history = history[len(history)-g.historyTurns:]
	}
	for _, t := range history {
		text := t.Working()
		if strings.TrimSpace(text) == "" {
			continue
		}
		role := core.RoleUser
		if t.Role == core.RoleAssistant {
			role = core.RoleAssistant
		}
		messages = append(messages, core.Message{Role: role, Content: text})
	}

	return append(messages, core.Message{Role: core.RoleUser, Content: question})
}
