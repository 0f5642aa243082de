package factory

import (
	"fmt"

	"github.com/qainatsaeed/BlackBox-LLM/pkg/llm"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/llm/ollama"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/llm/openai"
)

// NewLLMProvider builds a backend from its registry entry. apiKey is ignored
// by providers that do not authenticate.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "openai-compatible":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
