package predictor

import (
	"context"
	"strings"

	"github.com/MikeSquared-Agency/reflectbot/internal/textnorm"
)

// Stemmed cue words per attachment style.
var attachmentCues = map[string][]string{
	Secure: {
		"percaya", "yakin", "nyaman", "aman", "tenang", "dukung", "cerita", "bicara",
		"ngobrol", "dengar", "paham", "mengerti", "terima", "buka", "damai", "maaf",
		"bantu", "sayang", "cinta", "syukur", "lega", "jujur",
	},
	Anxious: {
		"takut", "khawatir", "cemas", "tinggal", "abai", "hirau", "butuh", "perhati",
		"insecure", "minder", "cemburu", "curiga", "panik", "ragu", "balas", "kabar",
		"rindu", "kangen", "gelisah", "selingkuh", "bohong", "tunggu",
	},
	Avoidant: {
		"space", "ruang", "mandiri", "independen", "bebas", "jarak", "jauh", "sulit",
		"hindar", "lari", "diam", "tutup", "clingy", "lengket", "ikat", "sibuk",
		"kontrol", "atur", "sendiri",
	},
}

// Stemmed emotion words per emotion.
var emotionCues = map[string][]string{
	"sadness": {"sedih", "kecewa", "tangis", "nangis", "luka", "hampa", "kosong", "sepi", "galau", "sakit", "depresi", "down"},
	"fear":    {"takut", "cemas", "khawatir", "panik", "gelisah", "trauma"},
	"anger":   {"marah", "kesal", "benci", "cemburu", "tengkar", "ribut"},
	"joy":     {"senang", "bahagia", "gembira", "syukur", "lega", "senyum", "tawa", "puas", "suka"},
	"love":    {"cinta", "sayang", "rindu", "kangen", "peluk"},
}

// Lexicon is a deterministic predictor that counts attachment cues in the
// normalized text. It needs no model files or network access.
type Lexicon struct {
	norm     *textnorm.Normalizer
	cues     map[string]string   // root -> label
	emotions map[string][]string // root -> emotions
}

// NewLexicon returns a lexicon predictor normalizing with n.
func NewLexicon(n *textnorm.Normalizer) *Lexicon {
	l := &Lexicon{
		norm:     n,
		cues:     make(map[string]string),
		emotions: make(map[string][]string),
	}
	// Labels is iterated so a root listed under two styles resolves the same
	// way on every run.
	for _, label := range Labels {
		for _, w := range attachmentCues[label] {
			if _, ok := l.cues[w]; !ok {
				l.cues[w] = label
			}
		}
	}
	for emotion, words := range emotionCues {
		for _, w := range words {
			l.emotions[w] = append(l.emotions[w], emotion)
		}
	}
	return l
}

// Predict scores text. Label probabilities are Laplace-smoothed cue counts;
// ties go to the earlier entry of Labels.
func (l *Lexicon) Predict(ctx context.Context, text string) (*Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Op: "predict", Err: ErrEmptyInput}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "predict", Err: err}
	}

	tokens := l.norm.Tokens(text)
	clean := strings.Join(tokens, " ")

	counts := make(map[string]int, len(Labels))
	total := 0
	for _, tok := range tokens {
		if label, ok := l.cues[tok]; ok {
			counts[label]++
			total++
		}
	}

	probs := make(map[string]float64, len(Labels))
	best, bestP := Labels[0], -1.0
	for _, label := range Labels {
		p := float64(counts[label]+1) / float64(total+len(Labels))
		probs[label] = p
		if p > bestP {
			best, bestP = label, p
		}
	}

	return &Prediction{
		Label:         best,
		Confidence:    bestP,
		Probabilities: probs,
		PhraseScores:  phraseScores(tokens, clean),
		EmotionScores: l.emotionScores(tokens),
		TextStats:     textStats(text, tokens, clean),
	}, nil
}

// phraseScores gives each extracted phrase the mean relative frequency of
// its words in the whole text.
func phraseScores(tokens []string, clean string) map[string]float64 {
	phrases := textnorm.ExtractPhrases(clean)
	if len(phrases) == 0 {
		return nil
	}
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	n := float64(len(tokens))

	out := make(map[string]float64, len(phrases))
	for _, p := range phrases {
		words := strings.Fields(p)
		sum := 0.0
		for _, w := range words {
			sum += tf[w] / n
		}
		out[p] = sum / float64(len(words))
	}
	return out
}

// emotionScores returns each emotion's share of the emotion words found.
// All emotions are present, with zero when none were found.
func (l *Lexicon) emotionScores(tokens []string) map[string]float64 {
	hits := make(map[string]int, len(emotionCues))
	total := 0
	for _, tok := range tokens {
		for _, e := range l.emotions[tok] {
			hits[e]++
			total++
		}
	}
	out := make(map[string]float64, len(emotionCues))
	for e := range emotionCues {
		if total > 0 {
			out[e] = float64(hits[e]) / float64(total)
		} else {
			out[e] = 0
		}
	}
	return out
}

func textStats(raw string, tokens []string, clean string) TextStats {
	return TextStats{
		WordCount:       len(tokens),
		SentenceCount:   strings.Count(raw, ".") + strings.Count(raw, "!") + strings.Count(raw, "?"),
		CleanTextLength: len(clean),
	}
}
