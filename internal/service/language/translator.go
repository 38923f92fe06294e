package language

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/conv"
)

const translatePrompt = `You are a translator. Translate the user's message from %s to %s.
Keep names, company names, technologies and numbers unchanged.
Keep informal tone informal. Reply with the translation only, no notes and no quotes.`

// LLMTranslator translates through the completion provider.
type LLMTranslator struct {
	provider core.CompletionProvider
	model    string
}

func NewLLMTranslator(provider core.CompletionProvider, model string) *LLMTranslator {
	return &LLMTranslator{provider: provider, model: model}
}

func (t *LLMTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	// Rough output bound: translations rarely need more than two tokens per input rune
	maxTokens := utf8.RuneCountInString(text) * 2
	maxTokens = min(max(maxTokens, 128), 1024)

	out, err := t.provider.Complete(ctx, core.CompletionRequest{
		Model: t.model,
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: fmt.Sprintf(translatePrompt, Name(from), Name(to))},
			{Role: core.RoleUser, Content: text},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", from, to, err)
	}
	return conv.StripQuotes(out), nil
}
