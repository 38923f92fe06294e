package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sandevgo/profiletwin/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	path         string
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	Service      string
	BaseURL      string
	Path         string // defaults to /v1/chat/completions
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	if cfg.Path == "" {
		cfg.Path = "/v1/chat/completions"
	}
	if cfg.Service == "" {
		cfg.Service = "llm"
	}
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.Service, cfg.BaseURL, cfg.APIKey, cfg.Model),
		path:         cfg.Path,
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

type chatCompletionRequest struct {
	Model       string         `json:"model"`
	Messages    []core.Message `json:"messages"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Temperature float64        `json:"temperature"`
}

func (o *OpenAICompatible) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	payload := chatCompletionRequest{
		Model:       o.modelFor(req),
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	data, err := o.doRequest(ctx, http.MethodPost, o.path, payload, headers)
	if err != nil {
		return "", err
	}

	return parseOpenAIResponse(o.service, data)
}

func parseOpenAIResponse(service string, data []byte) (string, error) {
	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		// Some gateways answer 200 with an empty body under load
		return "", core.NewUpstreamError(service, http.StatusBadGateway, errors.New("empty choices"))
	}
	return result.Choices[0].Message.Content, nil
}
