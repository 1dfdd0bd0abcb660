package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// systemMessage primes the model for SQL generation. The per-request prompt
// carries the schema, examples, and retrieved context.
const systemMessage = "You are a database analyst that translates natural language questions into SQL queries."

// OpenAIClient talks to OpenAI-compatible completion and embedding endpoints.
type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
	dimensions     int
	temperature    float64
	logger         *zap.Logger
}

// Config holds configuration for creating a provider client.
type Config struct {
	Provider       string  // "openai" (default) or "anthropic"
	Endpoint       string  // base URL, e.g. "https://api.openai.com/v1"
	Model          string  // completion model name
	APIKey         string  // optional for local endpoints
	EmbeddingModel string  // embedding model name
	Dimensions     int     // embedding dimensionality (default 384)
	Temperature    float64 // completion temperature
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	dims := cfg.Dimensions
	if dims == 0 {
		dims = 384
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientConfig),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     dims,
		temperature:    cfg.Temperature,
		logger:         logger.Named("llm"),
	}, nil
}

// Complete sends one prompt and returns the raw completion text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(c.temperature),
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeResponse, "no choices in response", false, nil)
	}

	c.logger.Info("completion request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Embed generates an embedding vector for the input text.
func (c *OpenAIClient) Embed(ctx context.Context, input string) ([]float32, error) {
	model := c.embeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(model),
		Input:      []string{input},
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return resp.Data[0].Embedding, nil
}

// Model returns the configured completion model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Dimensions returns the configured embedding dimensionality.
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}
