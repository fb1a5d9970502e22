package textnorm

import "strings"

const (
	minBigramLen  = 10
	minTrigramLen = 15
)

// ExtractPhrases returns the distinct bigrams and trigrams of normalized
// text that meet the minimum length floors. Bigrams come first, then
// trigrams, each in text order; a repeated span is kept only at its first
// occurrence. Frequency across several texts must be counted by the caller.
func ExtractPhrases(normalized string) []string {
	words := strings.Fields(normalized)
	if len(words) < 2 {
		return nil
	}

	seen := make(map[string]struct{})
	var phrases []string
	add := func(p string, floor int) {
		if len(p) < floor {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}

	for i := 0; i+1 < len(words); i++ {
		add(words[i]+" "+words[i+1], minBigramLen)
	}
	for i := 0; i+2 < len(words); i++ {
		add(words[i]+" "+words[i+1]+" "+words[i+2], minTrigramLen)
	}
	return phrases
}
