package llm

import (
	"context"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// anthropicMaxTokens bounds completion length; generated SQL statements are
// short relative to this.
const anthropicMaxTokens = 2000

// AnthropicClient is a completion-only provider. Embeddings always come from
// an OpenAI-compatible endpoint regardless of the completion provider.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewAnthropicClient creates an Anthropic-backed completion client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "anthropic api key is required", false, nil)
	}
	if cfg.Model == "" {
		return nil, NewError(ErrorTypeModel, "model is required", false, nil)
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.Named("llm"),
	}, nil
}

// Complete sends one prompt and returns the raw completion text.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	temperature := float32(c.temperature)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   anthropicMaxTokens,
		System:      systemMessage,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", NewError(ErrorTypeResponse, "no content in response", false, nil)
	}

	c.logger.Info("completion request completed",
		zap.Duration("elapsed", time.Since(start)))

	return *resp.Content[0].Text, nil
}

// Model returns the configured completion model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
