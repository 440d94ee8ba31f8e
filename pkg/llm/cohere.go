package llm

// Cohere exposes an OpenAI-compatible endpoint, so the Cohere client is a
// configured OpenAIClient pointed at the compatibility API.

const (
	// CohereBaseURL is Cohere's OpenAI-compatible API endpoint.
	CohereBaseURL = "https://api.cohere.ai/compatibility/v1"
	// DefaultCohereModel is the default Cohere chat model.
	DefaultCohereModel = "command-r-plus"
)

// NewCohereClient creates a client for Cohere's chat models.
func NewCohereClient(apiKey string, config Config) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = CohereBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultCohereModel
	}
	return NewOpenAIClient(apiKey, config)
}
