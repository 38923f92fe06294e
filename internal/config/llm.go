package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/profiletwin/pkg/log"
)

type LLMConfig struct {
	Provider    string  `env:"LLM_PROVIDER" envDefault:"groq"`
	Model       string  `env:"LLM_MODEL"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"500"`
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	// Translation uses a cheaper model when set, the main model otherwise
	TranslationModel string `env:"LLM_TRANSLATION_MODEL"`

	GroqAPIKey       string `env:"GROQ_API_KEY" secret:"true"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY" secret:"true"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY" secret:"true"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY" secret:"true"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://127.0.0.1:11434"`
	CustomBaseURL    string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomAPIKey     string `env:"CUSTOM_OPENAI_API_KEY" secret:"true"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

func (c LLMConfig) GetTranslationModel() string {
	if c.TranslationModel != "" {
		return c.TranslationModel
	}
	return c.Model
}
