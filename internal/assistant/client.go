package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/llm"
)

// ProviderClient adapts an llm.Provider to GenerationClient.
type ProviderClient struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

// NewProviderClient wraps provider, sending every prompt to model.
func NewProviderClient(provider llm.Provider, model string, logger *zap.Logger) *ProviderClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderClient{provider: provider, model: model, logger: logger}
}

// Generate sends prompt as a single user message.
func (c *ProviderClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   params.MaxOutputTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.provider.Name(), err)
	}

	in, out := resp.InputTokens, resp.OutputTokens
	if in == 0 && out == 0 {
		in, out = llm.EstimateTokens(prompt), llm.EstimateTokens(resp.Content)
	}
	c.logger.Debug("generation complete",
		zap.String("provider", c.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", in),
		zap.Int("output_tokens", out),
		zap.Bool("estimated_usage", resp.InputTokens == 0 && resp.OutputTokens == 0),
		zap.String("finish_reason", resp.FinishReason),
		zap.Float64("cost_usd", llm.EstimateCost(c.model, in, out)),
	)
	return resp.Content, nil
}
