package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// NewGenAIClient creates a Gemini API client. baseURL overrides the API
// endpoint when non-empty.
func NewGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// Gemini narrates with a Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini returns a Gemini narrator.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

func (g *Gemini) Summarize(ctx context.Context, transcript string, phrases []string, scores map[string]float64) (string, error) {
	return g.generate(ctx, summarizePrompt(transcript, phrases, scores))
}

func (g *Gemini) Explain(ctx context.Context, phrase, excerpt, label string) (string, error) {
	return g.generate(ctx, explainPrompt(phrase, excerpt, label))
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini generate: empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text, err := cleanOutput(b.String())
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return text, nil
}
