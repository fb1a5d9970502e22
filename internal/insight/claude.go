package insight

import (
	"context"

	"github.com/MikeSquared-Agency/reflectbot/internal/anthropic"
)

const maxInsightTokens = 2048

// Claude narrates with the Anthropic Messages API.
type Claude struct {
	client *anthropic.Client
}

// NewClaude returns an Anthropic narrator.
func NewClaude(apiKey, model string) *Claude {
	return &Claude{client: anthropic.NewClient(apiKey, model)}
}

// SetTestTransport points the client at a test server.
func (c *Claude) SetTestTransport(url string) {
	c.client.SetEndpoint(url)
}

func (c *Claude) Summarize(ctx context.Context, transcript string, phrases []string, scores map[string]float64) (string, error) {
	return c.complete(ctx, summarizePrompt(transcript, phrases, scores))
}

func (c *Claude) Explain(ctx context.Context, phrase, excerpt, label string) (string, error) {
	return c.complete(ctx, explainPrompt(phrase, excerpt, label))
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	reply, err := c.client.Complete(ctx, systemPrompt, []anthropic.Message{{Role: "user", Content: prompt}}, maxInsightTokens)
	if err != nil {
		return "", err
	}
	return cleanOutput(reply.Text)
}
