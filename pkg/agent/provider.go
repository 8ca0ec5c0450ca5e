// Package agent turns validation summaries into narrative reports using an
// LLM provider. Provider failures degrade to inline text so a run never
// fails because the AI service did.
package agent

import (
	"context"
	"fmt"
)

// LLMProvider is the interface for different AI model backends.
type LLMProvider interface {
	// Complete sends a system and user prompt and returns the model's text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// ListModels returns the model names the provider can serve.
	ListModels(ctx context.Context) ([]string, error)
}

// NewProvider creates the named provider. apiURL is honored by providers
// that support OpenAI-compatible gateways and ignored by the rest.
func NewProvider(ctx context.Context, providerName, apiKey, apiURL, modelName string) (LLMProvider, error) {
	switch providerName {
	case "gemini":
		return NewGeminiProvider(ctx, apiKey, modelName)
	case "openai":
		return NewOpenAIProvider(apiKey, apiURL, modelName), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}
