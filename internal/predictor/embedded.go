package predictor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"google.golang.org/genai"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenAIEmbedder embeds text with a Gemini embedding model.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder returns an embedder using client and model. An empty
// model selects text-embedding-004.
func NewGenAIEmbedder(client *genai.Client, model string) *GenAIEmbedder {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GenAIEmbedder{client: client, model: model}
}

// Embed returns the embedding of text.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "CLASSIFICATION",
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("empty embedding response")
	}
	return resp.Embeddings[0].Values, nil
}

// Embedded wraps a Predictor and fills in the embedding summary. Embedding
// failures are logged and leave the summary empty; failures of the wrapped
// predictor are returned unchanged.
type Embedded struct {
	next     Predictor
	embedder Embedder
	logger   *slog.Logger
}

// WithEmbedding decorates next with an embedding summary from e.
func WithEmbedding(next Predictor, e Embedder, logger *slog.Logger) *Embedded {
	return &Embedded{next: next, embedder: e, logger: logger}
}

func (p *Embedded) Predict(ctx context.Context, text string) (*Prediction, error) {
	pred, err := p.next.Predict(ctx, text)
	if err != nil {
		return nil, err
	}
	if pred.Embedding != nil {
		return pred, nil
	}

	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		p.logger.Warn("embedding failed, continuing without summary", "error", err)
		return pred, nil
	}
	pred.Embedding = Summarize(vec)
	return pred, nil
}

// Summarize returns dimension, mean, population standard deviation, max and
// min of vec, or nil for an empty vector.
func Summarize(vec []float32) *EmbeddingSummary {
	if len(vec) == 0 {
		return nil
	}
	s := &EmbeddingSummary{
		Dim: len(vec),
		Max: math.Inf(-1),
		Min: math.Inf(1),
	}
	var sum float64
	for _, v := range vec {
		f := float64(v)
		sum += f
		s.Max = math.Max(s.Max, f)
		s.Min = math.Min(s.Min, f)
	}
	s.Mean = sum / float64(len(vec))

	var sq float64
	for _, v := range vec {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(vec)))
	return s
}
