package factory

import (
	"fmt"

	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/llm/gemini"
	"ai-lawmatch-be/pkg/llm/ollama"
)

// NewLLMProvider builds a provider by name. The triage container calls this
// three times: provider A, provider B, and the judge.
func NewLLMProvider(providerType, modelName, baseURL, geminiApiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if geminiApiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiApiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
