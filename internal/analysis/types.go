// Package analysis turns a finished conversation into an attachment-style
// report and makes sure each session is analyzed at most once.
package analysis

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MinMessages is the number of user messages needed before a session can
// be analyzed.
const MinMessages = 5

var (
	ErrNoConversation   = errors.New("no conversation to analyze")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNotAnalyzed      = errors.New("session has not been analyzed")
	ErrEmptyPhrase      = errors.New("phrase is required")
)

// Importance labels for ranked phrases.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Message is one user message of a session, in conversation order.
type Message struct {
	Content   string
	CreatedAt time.Time
}

type AttachmentStyle struct {
	Prediction    string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// RankedPhrase is a phrase with its frequency across messages.
// TFIDFScore is nil when the predictor gave no score for it.
type RankedPhrase struct {
	Phrase     string   `json:"phrase"`
	Frequency  int      `json:"frequency"`
	Percentage float64  `json:"percentage"`
	TFIDFScore *float64 `json:"tfidf_score"`
	Importance string   `json:"importance"`
}

type PhraseAnalysis struct {
	TopPhrases            []RankedPhrase `json:"top_phrases"`
	TotalUniquePhrases    int            `json:"total_unique_phrases"`
	TotalPhrasesExtracted int            `json:"total_phrases_extracted"`
}

type Emotion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type EmotionAnalysis struct {
	Scores   map[string]float64 `json:"scores"`
	Dominant *Emotion           `json:"dominant"`
}

type EmbeddingStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

type BertFeatures struct {
	EmbeddingDimension int            `json:"embedding_dimension"`
	Statistics         EmbeddingStats `json:"statistics"`
}

type TextStatistics struct {
	TotalMessages    int     `json:"total_messages"`
	AvgMessageLength float64 `json:"avg_message_length"`
	WordCount        int     `json:"word_count"`
	SentenceCount    int     `json:"sentence_count"`
	CleanTextLength  int     `json:"clean_text_length"`
}

type TimelinePhrase struct {
	Phrase string   `json:"phrase"`
	Score  *float64 `json:"score"`
}

type TimelineEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Content   string           `json:"content"`
	WordCount int              `json:"word_count"`
	Phrases   []TimelinePhrase `json:"phrases"`
}

// Result is the stored analysis of one session. Cached is not part of the
// stored record; it tells the caller whether this call computed it.
type Result struct {
	SessionID       uuid.UUID          `json:"session_id"`
	Cached          bool               `json:"cached"`
	AnalyzedAt      time.Time          `json:"analyzed_at"`
	AttachmentStyle AttachmentStyle    `json:"attachment_style"`
	PhraseAnalysis  PhraseAnalysis     `json:"phrase_analysis"`
	EmotionAnalysis EmotionAnalysis    `json:"emotion_analysis"`
	BertFeatures    *BertFeatures      `json:"bert_features"`
	TextStatistics  TextStatistics     `json:"text_statistics"`
	Timeline        []TimelineEntry    `json:"timeline"`
	AIInsights      string             `json:"ai_insights"`
	RuleScores      map[string]float64 `json:"rule_scores"`
}
