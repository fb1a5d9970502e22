package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reflectbot/internal/insight"
	"github.com/MikeSquared-Agency/reflectbot/internal/predictor"
	"github.com/MikeSquared-Agency/reflectbot/internal/textnorm"
)

const (
	topPhraseLimit      = 20
	narratorPhraseLimit = 15
	timelinePhraseLimit = 5
)

// Aggregator computes a Result from a session's user messages.
type Aggregator struct {
	norm      *textnorm.Normalizer
	predictor predictor.Predictor
	narrator  insight.Narrator
	now       func() time.Time
	logger    *slog.Logger
}

func NewAggregator(norm *textnorm.Normalizer, p predictor.Predictor, n insight.Narrator, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		norm:      norm,
		predictor: p,
		narrator:  n,
		now:       time.Now,
		logger:    logger,
	}
}

// Aggregate builds the analysis of msgs. A predictor failure aborts it; a
// narrator failure is replaced by a fallback text.
func (a *Aggregator) Aggregate(ctx context.Context, sessionID uuid.UUID, msgs []Message) (*Result, error) {
	if len(msgs) == 0 {
		return nil, ErrNoConversation
	}
	if len(msgs) < MinMessages {
		return nil, fmt.Errorf("%w: %d user messages, need at least %d", ErrInsufficientData, len(msgs), MinMessages)
	}

	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Content
	}
	full := strings.Join(texts, "\n")

	pred, err := a.predictor.Predict(ctx, full)
	if err != nil {
		return nil, fmt.Errorf("predict attachment style: %w", err)
	}

	ranked, perMessage := a.rankPhrases(texts)
	top := ranked.top(topPhraseLimit, len(msgs), pred.PhraseScores)

	res := &Result{
		SessionID:  sessionID,
		AnalyzedAt: a.now().UTC(),
		AttachmentStyle: AttachmentStyle{
			Prediction:    pred.Label,
			Confidence:    pred.Confidence,
			Probabilities: pred.Probabilities,
		},
		PhraseAnalysis: PhraseAnalysis{
			TopPhrases:            top,
			TotalUniquePhrases:    len(ranked.order),
			TotalPhrasesExtracted: ranked.total,
		},
		EmotionAnalysis: emotionAnalysis(pred.EmotionScores),
		BertFeatures:    bertFeatures(pred.Embedding),
		TextStatistics: TextStatistics{
			TotalMessages:    len(msgs),
			AvgMessageLength: averageWords(texts),
			WordCount:        pred.TextStats.WordCount,
			SentenceCount:    pred.TextStats.SentenceCount,
			CleanTextLength:  pred.TextStats.CleanTextLength,
		},
		Timeline:   timeline(msgs, perMessage, pred.PhraseScores),
		RuleScores: copyScores(pred.Probabilities),
	}

	keyPhrases := make([]string, 0, narratorPhraseLimit)
	for i := 0; i < len(top) && i < narratorPhraseLimit; i++ {
		keyPhrases = append(keyPhrases, top[i].Phrase)
	}
	summary, err := a.narrator.Summarize(ctx, full, keyPhrases, pred.Probabilities)
	if err != nil {
		a.logger.Warn("narrative summary failed, using fallback",
			"session_id", sessionID,
			"error", err,
		)
		summary = insight.Fallback(err)
	}
	res.AIInsights = summary

	return res, nil
}

// phraseCounts counts each phrase once per message that contains it.
type phraseCounts struct {
	counts map[string]int
	order  []string // first-seen order
	total  int
}

func (a *Aggregator) rankPhrases(texts []string) (*phraseCounts, [][]string) {
	pc := &phraseCounts{counts: make(map[string]int)}
	perMessage := make([][]string, len(texts))
	for i, t := range texts {
		phrases := textnorm.ExtractPhrases(a.norm.Normalize(t))
		perMessage[i] = phrases
		pc.total += len(phrases)
		for _, p := range phrases {
			if pc.counts[p] == 0 {
				pc.order = append(pc.order, p)
			}
			pc.counts[p]++
		}
	}
	return pc, perMessage
}

func (pc *phraseCounts) top(limit, messages int, scores map[string]float64) []RankedPhrase {
	sorted := append([]string(nil), pc.order...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return pc.counts[sorted[i]] > pc.counts[sorted[j]]
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]RankedPhrase, len(sorted))
	for i, p := range sorted {
		freq := pc.counts[p]
		out[i] = RankedPhrase{
			Phrase:     p,
			Frequency:  freq,
			Percentage: round1(float64(freq) / float64(messages) * 100),
			TFIDFScore: lookup(scores, p),
			Importance: Importance(freq),
		}
	}
	return out
}

// Importance labels a phrase by how many messages it appeared in.
func Importance(frequency int) string {
	switch {
	case frequency >= 3:
		return ImportanceHigh
	case frequency >= 2:
		return ImportanceMedium
	default:
		return ImportanceLow
	}
}

func emotionAnalysis(scores map[string]float64) EmotionAnalysis {
	ea := EmotionAnalysis{Scores: copyScores(scores)}
	if len(scores) == 0 {
		ea.Scores = map[string]float64{}
		return ea
	}

	names := make([]string, 0, len(scores))
	for n := range scores {
		names = append(names, n)
	}
	sort.Strings(names)

	var best *Emotion
	for _, n := range names {
		if scores[n] <= 0 {
			continue
		}
		if best == nil || scores[n] > best.Score {
			best = &Emotion{Name: n, Score: scores[n]}
		}
	}
	ea.Dominant = best
	return ea
}

func bertFeatures(e *predictor.EmbeddingSummary) *BertFeatures {
	if e == nil {
		return nil
	}
	return &BertFeatures{
		EmbeddingDimension: e.Dim,
		Statistics: EmbeddingStats{
			Mean: e.Mean,
			Std:  e.Std,
			Max:  e.Max,
			Min:  e.Min,
		},
	}
}

func timeline(msgs []Message, perMessage [][]string, scores map[string]float64) []TimelineEntry {
	out := make([]TimelineEntry, len(msgs))
	for i, m := range msgs {
		phrases := perMessage[i]
		if len(phrases) > timelinePhraseLimit {
			phrases = phrases[:timelinePhraseLimit]
		}
		tp := make([]TimelinePhrase, len(phrases))
		for j, p := range phrases {
			tp[j] = TimelinePhrase{Phrase: p, Score: lookup(scores, p)}
		}
		out[i] = TimelineEntry{
			Timestamp: m.CreatedAt,
			Content:   m.Content,
			WordCount: len(strings.Fields(m.Content)),
			Phrases:   tp,
		}
	}
	return out
}

func averageWords(texts []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	total := 0
	for _, t := range texts {
		total += len(strings.Fields(t))
	}
	return round1(float64(total) / float64(len(texts)))
}

func lookup(scores map[string]float64, key string) *float64 {
	v, ok := scores[key]
	if !ok {
		return nil
	}
	return &v
}

func copyScores(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
