package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewClients builds the completion and embedding clients for the configured
// provider. Anthropic handles completions only, so its configuration still
// carries an OpenAI-compatible embedding endpoint.
func NewClients(completion *Config, embedding *Config, logger *zap.Logger) (CompletionClient, EmbeddingClient, error) {
	embedder, err := NewOpenAIClient(embedding, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding client: %w", err)
	}

	switch completion.Provider {
	case "", "openai":
		completer, err := NewOpenAIClient(completion, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("completion client: %w", err)
		}
		return completer, embedder, nil

	case "anthropic":
		completer, err := NewAnthropicClient(completion, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("completion client: %w", err)
		}
		return completer, embedder, nil

	default:
		return nil, nil, fmt.Errorf("unknown completion provider %q", completion.Provider)
	}
}
