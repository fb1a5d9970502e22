package hermes

import "time"

// NATS subjects published by the service.
const (
	SubjectChatTurn        = "reflectbot.chat.turn"
	SubjectSessionAnalyzed = "reflectbot.session.analyzed"
)

// TurnEvent is published after each persisted chat exchange.
type TurnEvent struct {
	SessionID   string    `json:"session_id"`
	Turn        int       `json:"turn"`
	Intent      string    `json:"intent"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// AnalysisEvent is published when a session is analyzed for the first time.
type AnalysisEvent struct {
	SessionID       string    `json:"session_id"`
	AttachmentStyle string    `json:"attachment_style"`
	Confidence      float64   `json:"confidence"`
	TotalMessages   int       `json:"total_messages"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}
