package llm

// Local targets a locally hosted OpenAI-compatible endpoint. The base
// URL is expected to already contain the /v1 segment.
type Local struct {
	*OpenAICompatible
}

func NewLocal(baseURL, apiKey, model string) *Local {
	return &Local{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			ChatPath:   "/chat/completions",
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
