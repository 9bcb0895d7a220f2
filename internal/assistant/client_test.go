package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/riskdesk/internal/llm"
)

type stubProvider struct {
	requests []llm.CompletionRequest
	resp     *llm.CompletionResponse
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func TestProviderClientGenerate(t *testing.T) {
	p := &stubProvider{resp: &llm.CompletionResponse{Content: "resposta", Model: "gemini-2.5-flash", InputTokens: 100, OutputTokens: 20}}
	c := NewProviderClient(p, "gemini-2.5-flash", nil)

	text, err := c.Generate(context.Background(), "prompt completo", DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "resposta", text)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "prompt completo"}}, req.Messages)
	assert.Equal(t, 0.3, req.Temperature)
	assert.Equal(t, 0.9, req.TopP)
	assert.Equal(t, 4000, req.MaxTokens)
}

func TestProviderClientKeepsAPIError(t *testing.T) {
	p := &stubProvider{err: &llm.APIError{Provider: "stub", StatusCode: 429, Message: "slow down"}}
	c := NewProviderClient(p, "m", nil)

	_, err := c.Generate(context.Background(), "x", DefaultGenerationParams())
	require.Error(t, err)

	apiErr, ok := llm.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.RateLimited())
	assert.Equal(t, ErrRateLimit, Classify(err))
}
