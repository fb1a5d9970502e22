package insight

import (
	"fmt"
	"strings"
)

const (
	maxPromptPhrases  = 20
	explainContextLen = 500
)

const systemPrompt = `Kamu adalah psikolog attachment theory expert yang empatis dan profesional.`

const summarizeTemplate = `PERCAKAPAN:
%s

FRASA KUNCI:
%s

SKOR:
- Secure: %s
- Anxious: %s
- Avoidant: %s

Berikan analisis dalam 4 bagian:
1. Ringkasan Emosional
2. Pola Kelekatan
3. Dinamika Hubungan
4. Insight & Rekomendasi`

const explainTemplate = `Sebagai psikolog attachment theory, jelaskan frasa berikut:

FRASA: "%s"

KONTEKS:
%s...

ATTACHMENT STYLE: %s

Jelaskan:
1. Makna kelekatan
2. Hubungan dengan attachment style
3. Latar belakang psikologis`

func summarizePrompt(transcript string, phrases []string, scores map[string]float64) string {
	if len(phrases) > maxPromptPhrases {
		phrases = phrases[:maxPromptPhrases]
	}
	return fmt.Sprintf(summarizeTemplate,
		transcript,
		strings.Join(phrases, ", "),
		percent(scores["secure"]),
		percent(scores["anxious"]),
		percent(scores["avoidant"]),
	)
}

func explainPrompt(phrase, excerpt, label string) string {
	return fmt.Sprintf(explainTemplate, phrase, TruncateContext(excerpt), label)
}

// TruncateContext cuts excerpt to the length used in explanation prompts,
// never splitting a UTF-8 sequence.
func TruncateContext(excerpt string) string {
	r := []rune(excerpt)
	if len(r) <= explainContextLen {
		return excerpt
	}
	return string(r[:explainContextLen])
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
