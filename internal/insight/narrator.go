// Package insight writes the narrative parts of an analysis: a summary
// of the whole conversation and explanations of single phrases. Several
// LLM backends implement the same Narrator interface.
package insight

import (
	"context"
	"errors"
	"strings"
)

// ErrDisabled is returned by the narrator used when no backend is configured.
var ErrDisabled = errors.New("narrator disabled")

// Narrator produces free-text insight.
type Narrator interface {
	// Summarize writes the four-part analysis of a conversation.
	Summarize(ctx context.Context, transcript string, phrases []string, scores map[string]float64) (string, error)
	// Explain describes what a phrase says about the speaker's attachment.
	Explain(ctx context.Context, phrase, excerpt, label string) (string, error)
}

// Fallback is the text shown in place of an insight that could not be
// generated.
func Fallback(err error) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return "[AI insight unavailable] " + reason
}

// Disabled is a Narrator that always fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string, []string, map[string]float64) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Explain(context.Context, string, string, string) (string, error) {
	return "", ErrDisabled
}

func cleanOutput(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
