// Package llm provides completion and embedding clients for hosted model
// providers.
package llm

import "context"

// CompletionClient is the narrow boundary to a stateless text-completion
// service. The core treats it as opaque, potentially slow, and potentially
// failing; it never retries.
// Use this interface for dependency injection to enable mocking in tests.
type CompletionClient interface {
	// Complete sends one prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model name.
	Model() string
}

// EmbeddingClient computes fixed-dimension embedding vectors for text.
type EmbeddingClient interface {
	// Embed returns the embedding vector for the input text.
	Embed(ctx context.Context, input string) ([]float32, error)

	// Dimensions returns the configured vector dimensionality.
	Dimensions() int
}

// Compile-time interface checks.
var (
	_ CompletionClient = (*OpenAIClient)(nil)
	_ EmbeddingClient  = (*OpenAIClient)(nil)
	_ CompletionClient = (*AnthropicClient)(nil)
	_ CompletionClient = (*MockClient)(nil)
	_ EmbeddingClient  = (*MockClient)(nil)
)
