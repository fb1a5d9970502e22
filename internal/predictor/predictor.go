// Package predictor estimates a conversation's attachment style. The
// analysis pipeline only depends on the Predictor interface; the model
// behind it may be the built-in lexicon, a remote model server, or either
// of those enriched with an embedding summary.
package predictor

import (
	"context"
	"errors"
)

// Attachment style labels.
const (
	Secure   = "secure"
	Anxious  = "anxious"
	Avoidant = "avoidant"
)

// Labels lists the attachment styles in tie-break order.
var Labels = []string{Secure, Anxious, Avoidant}

// ErrEmptyInput is returned for blank text.
var ErrEmptyInput = errors.New("empty input")

// Error is returned by every Predictor failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "predictor " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Predictor classifies a full conversation text.
type Predictor interface {
	Predict(ctx context.Context, text string) (*Prediction, error)
}

// EmbeddingSummary describes the embedding vector of a text.
type EmbeddingSummary struct {
	Dim  int     `json:"embedding_dim"`
	Mean float64 `json:"embedding_mean"`
	Std  float64 `json:"embedding_std"`
	Max  float64 `json:"embedding_max"`
	Min  float64 `json:"embedding_min"`
}

// TextStats are simple counts over the input.
type TextStats struct {
	WordCount       int `json:"word_count"`
	SentenceCount   int `json:"sentence_count"`
	CleanTextLength int `json:"clean_text_length"`
}

// Prediction is the output of a Predictor. PhraseScores, EmotionScores and
// Embedding are optional.
type Prediction struct {
	Label         string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	PhraseScores  map[string]float64 `json:"phrase_scores,omitempty"`
	EmotionScores map[string]float64 `json:"emotion_scores,omitempty"`
	Embedding     *EmbeddingSummary  `json:"bert_summary,omitempty"`
	TextStats     TextStats          `json:"text_stats"`
}
