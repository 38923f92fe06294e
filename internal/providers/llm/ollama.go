package llm

// NewOllama talks to a local Ollama through its OpenAI compatible endpoint. The key is optional.
func NewOllama(baseURL, model string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Service: "ollama",
		BaseURL: baseURL,
		Model:   model,
	})
}
