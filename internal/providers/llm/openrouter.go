package llm

import "github.com/sandevgo/profiletwin/internal/core"

func NewOpenRouter(apiKey, model string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Service:    "openrouter",
		BaseURL:    "https://openrouter.ai/api",
		APIKey:     apiKey,
		Model:      model,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
		ExtraHeaders: map[string]string{
			"HTTP-Referer": core.TwinRepositoryURL,
			"X-Title":      core.TwinName,
		},
	})
}
