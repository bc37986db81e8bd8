package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/config"
)

// Client wraps the langchaingo Anthropic model for categorization
// calls.
type Client struct {
	llm llms.Model
	cfg config.AIConfig
}

// NewClient creates a Claude-backed client. Without an API key it
// returns nil and categorization runs fallback-only.
func NewClient(cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set; categorization will use fallback only")
		return nil, nil
	}

	model, err := anthropic.New(
		anthropic.WithToken(cfg.APIKey),
		anthropic.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return &Client{llm: model, cfg: cfg}, nil
}

// Generate sends one prompt, bounded by the configured call timeout.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithMaxTokens(c.cfg.MaxTokens),
		llms.WithTemperature(c.cfg.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(response), nil
}
