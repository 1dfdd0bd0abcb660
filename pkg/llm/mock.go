package llm

import (
	"context"
)

// MockClient is a configurable mock for testing pipeline behavior without a
// provider. Set the function fields to control behavior in tests.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// EmbedFunc is called when Embed is invoked.
	// If nil, returns a zero vector of Dims length and nil error.
	EmbedFunc func(ctx context.Context, input string) ([]float32, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Dims is returned by Dimensions. Defaults to 384.
	Dims int

	// Call tracking for verification.
	CompleteCalls int
	EmbedCalls    int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ModelName: "mock-model",
		Dims:      384,
	}
}

// Complete implements CompletionClient.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// Embed implements EmbeddingClient.
func (m *MockClient) Embed(ctx context.Context, input string) ([]float32, error) {
	m.EmbedCalls++
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, input)
	}
	return make([]float32, m.Dimensions()), nil
}

// Model implements CompletionClient.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Dimensions implements EmbeddingClient.
func (m *MockClient) Dimensions() int {
	if m.Dims == 0 {
		return 384
	}
	return m.Dims
}
