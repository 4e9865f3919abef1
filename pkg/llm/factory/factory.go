package factory

import (
	"fmt"

	"groupware-ai-be/pkg/llm"
	"groupware-ai-be/pkg/llm/ollama"
	"groupware-ai-be/pkg/llm/openai"
)

// NewLLMProvider creates the configured LLM backend.
// Supported providers: "openai" (or any OpenAI-compatible endpoint), "ollama".
func NewLLMProvider(provider, model, ollamaBaseURL, openaiBaseURL, openaiAPIKey string) (llm.LLMProvider, error) {
	switch provider {
	case "openai":
		if openaiAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewOpenAIProvider(openaiBaseURL, openaiAPIKey, model), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
