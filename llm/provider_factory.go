package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory resolves which provider backs a completion call. Both
// canonical model configs (economy, accurate) normally live on one provider,
// but the factory keys off the model id so a gemini-* override in either
// config slot routes correctly without any other wiring.
type ProviderFactory struct {
	openaiAPIKey string
	geminiAPIKey string
}

// NewProviderFactory creates a factory over the configured API keys. A key
// may be empty; resolution fails only when a call actually needs it.
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey: openaiAPIKey,
		geminiAPIKey: geminiAPIKey,
	}
}

// GetProvider resolves the provider for one completion call. An explicit
// providerName (the LLM_PROVIDER setting) wins; otherwise the model id's
// prefix decides.
func (f *ProviderFactory) GetProvider(ctx context.Context, model, providerName string) (Provider, error) {
	name := strings.ToLower(providerName)
	if name == "" {
		name = inferProviderName(model)
	}

	switch name {
	case providerNameOpenAI:
		if f.openaiAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		return NewOpenAIProvider(f.openaiAPIKey), nil

	case providerNameGemini:
		if f.geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		return NewGeminiProvider(ctx, f.geminiAPIKey)

	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: %s, %s)", providerName, providerNameOpenAI, providerNameGemini)
	}
}

// inferProviderName maps a model id to its provider. Ids without a known
// prefix run on openai, which hosts both default model configs.
func inferProviderName(model string) string {
	if strings.HasPrefix(strings.ToLower(model), "gemini-") {
		return providerNameGemini
	}
	return providerNameOpenAI
}
