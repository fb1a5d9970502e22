// Package textnorm cleans Indonesian chat text and extracts short phrases
// from it. Everything here is deterministic: the same input always yields
// the same output.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	digitRe     = regexp.MustCompile(`\d+`)
	nonLetterRe = regexp.MustCompile(`[^a-zA-Z\s]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Normalizer lower-cases, strips, de-slangs, removes stopwords and stems.
type Normalizer struct {
	slang     map[string]string
	stopwords map[string]struct{}
	stemmer   *Stemmer
}

// New returns a Normalizer using the built-in slang map, stopword list and
// root dictionary.
func New() *Normalizer {
	stop := make(map[string]struct{}, len(defaultStopwords))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	return &Normalizer{
		slang:     defaultSlang,
		stopwords: stop,
		stemmer:   NewStemmer(defaultRoots),
	}
}

// Normalize returns the cleaned, stemmed form of raw.
func (n *Normalizer) Normalize(raw string) string {
	return strings.Join(n.Tokens(raw), " ")
}

// Tokens returns the normalized tokens of raw in order.
func (n *Normalizer) Tokens(raw string) []string {
	words := strings.Fields(n.clean(raw))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if std, ok := n.slang[w]; ok {
			w = std
		}
		if _, stop := n.stopwords[w]; stop {
			continue
		}
		out = append(out, n.stemmer.Stem(w))
	}
	return out
}

// Stem exposes the underlying stemmer for callers that match on roots.
func (n *Normalizer) Stem(word string) string {
	return n.stemmer.Stem(strings.ToLower(word))
}

func (n *Normalizer) clean(raw string) string {
	// RE2's \s is ASCII-only; fold other spaces first so U+00A0 still
	// separates words.
	text := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, strings.ToLower(raw))
	text = digitRe.ReplaceAllString(text, "")
	text = nonLetterRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
