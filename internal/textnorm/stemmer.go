package textnorm

import "strings"

const maxPrefixes = 3

var (
	particles   = []string{"lah", "kah", "tah", "pun"}
	possessives = []string{"nya", "ku", "mu"}
	// Longest first so "kan" is tried before "an".
	derivational = []string{"kan", "an", "i"}
)

// prefixRule strips a prefix and proposes one or more candidate remainders.
type prefixRule struct {
	prefix  string
	recodes []string // letters that may have been absorbed by the prefix
}

// Both a prefix and its shorter form are tried: "per"+"asa" and "pe"+"rasa".
var prefixRules = []prefixRule{
	{prefix: "meng", recodes: []string{"", "k"}},
	{prefix: "meny", recodes: []string{"s"}},
	{prefix: "mem", recodes: []string{"", "p"}},
	{prefix: "men", recodes: []string{"", "t"}},
	{prefix: "me", recodes: []string{""}},
	{prefix: "peng", recodes: []string{"", "k"}},
	{prefix: "peny", recodes: []string{"s"}},
	{prefix: "pem", recodes: []string{"", "p"}},
	{prefix: "pen", recodes: []string{"", "t"}},
	{prefix: "per", recodes: []string{""}},
	{prefix: "pe", recodes: []string{""}},
	{prefix: "ber", recodes: []string{""}},
	{prefix: "be", recodes: []string{""}},
	{prefix: "ter", recodes: []string{""}},
	{prefix: "di", recodes: []string{""}},
	{prefix: "ke", recodes: []string{""}},
	{prefix: "se", recodes: []string{""}},
}

// Stemmer reduces Indonesian words to a dictionary root by affix stripping.
// A word whose root cannot be confirmed is returned unchanged.
type Stemmer struct {
	roots map[string]struct{}
}

// NewStemmer builds a Stemmer over the given root words.
func NewStemmer(roots []string) *Stemmer {
	m := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		m[r] = struct{}{}
	}
	return &Stemmer{roots: m}
}

// Stem returns the root of word, or word itself. Every suffix and prefix
// reading is tried and the longest confirmed root wins, so "perasaan"
// yields "rasa" rather than "asa".
func (s *Stemmer) Stem(word string) string {
	if len(word) < 4 || s.isRoot(word) {
		return word
	}

	best := ""
	for _, base := range s.suffixCandidates(word) {
		s.collectRoots(base, maxPrefixes, func(root string) {
			if len(root) > len(best) {
				best = root
			}
		})
	}
	if best == "" {
		return word
	}
	return best
}

func (s *Stemmer) isRoot(w string) bool {
	_, ok := s.roots[w]
	return ok
}

// suffixCandidates lists the word with inflectional and derivational
// suffixes removed, most conservative first.
func (s *Stemmer) suffixCandidates(word string) []string {
	w := trimFirst(word, particles)
	w = trimFirst(w, possessives)

	out := []string{w}
	for _, suf := range derivational {
		if strings.HasSuffix(w, suf) && len(w)-len(suf) >= 3 {
			out = append(out, strings.TrimSuffix(w, suf))
		}
	}
	if w != word {
		out = append(out, word)
	}
	return out
}

// collectRoots reports every dictionary root reachable from word by
// stripping up to depth prefixes.
func (s *Stemmer) collectRoots(word string, depth int, found func(string)) {
	if s.isRoot(word) {
		found(word)
	}
	if depth == 0 {
		return
	}
	for _, rule := range prefixRules {
		if !strings.HasPrefix(word, rule.prefix) {
			continue
		}
		rest := strings.TrimPrefix(word, rule.prefix)
		for _, letter := range rule.recodes {
			if candidate := letter + rest; len(candidate) >= 3 {
				s.collectRoots(candidate, depth-1, found)
			}
		}
	}
}

func trimFirst(word string, suffixes []string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf) && len(word)-len(suf) >= 3 {
			return strings.TrimSuffix(word, suf)
		}
	}
	return word
}
