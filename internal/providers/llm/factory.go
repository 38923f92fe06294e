package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
)

var defaultModels = map[string]string{
	"groq":       "llama-3.1-8b-instant",
	"openai":     "gpt-4o-mini",
	"openrouter": "meta-llama/llama-3.1-8b-instruct",
	"anthropic":  "claude-3-5-haiku-latest",
	"ollama":     "llama3.1",
}

// NewProvider creates the completion provider selected by configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.CompletionProvider, error) {
	model := cfg.Model
	if model == "" {
		model = defaultModels[cfg.Provider]
	}

	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "groq":
		return NewGroq(cfg.GroqAPIKey, model), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, model), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, model), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, model), nil
	case "custom":
		if cfg.CustomBaseURL == "" {
			return nil, fmt.Errorf("custom provider requires CUSTOM_OPENAI_BASE_URL")
		}
		return NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
