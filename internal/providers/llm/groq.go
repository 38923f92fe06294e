package llm

// NewGroq creates a provider for Groq's OpenAI compatible endpoint.
func NewGroq(apiKey, model string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Service:    "groq",
		BaseURL:    "https://api.groq.com/openai",
		APIKey:     apiKey,
		Model:      model,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
