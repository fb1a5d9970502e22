package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reflectbot/internal/analysis"
)

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	Turn      int       `json:"turn"`
	CreatedAt time.Time `json:"created_at"`
}

// Exchange is one user message and the bot's reply to it.
type Exchange struct {
	Turn        int
	Intent      string
	UserMessage string
	BotResponse string
	At          time.Time
}

// AddExchange stores both sides of a turn atomically.
func (s *Store) AddExchange(ctx context.Context, sessionID uuid.UUID, ex Exchange) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range []struct{ sender, content string }{
		{SenderUser, ex.UserMessage},
		{SenderBot, ex.BotResponse},
	} {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_messages (id, session_id, sender, content, intent, turn, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), sessionID, m.sender, m.content, ex.Intent, ex.Turn, ex.At,
		)
		if err != nil {
			return fmt.Errorf("insert %s message: %w", m.sender, notFound(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListMessages returns every message of a session in order.
func (s *Store) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]ChatMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, sender, content, intent, turn, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY turn, seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []ChatMessage{}
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.Intent, &m.Turn, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountUserMessages returns how many messages the user sent in a session.
func (s *Store) CountUserMessages(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM chat_messages
		WHERE session_id = $1 AND sender = 'user'`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count user messages: %w", err)
	}
	return n, nil
}

// LoadUserMessages returns the user's messages of a session in order.
func (s *Store) LoadUserMessages(ctx context.Context, sessionID uuid.UUID) ([]analysis.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT content, created_at
		FROM chat_messages
		WHERE session_id = $1 AND sender = 'user'
		ORDER BY turn, seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query user messages: %w", err)
	}
	defer rows.Close()

	var msgs []analysis.Message
	for rows.Next() {
		var m analysis.Message
		if err := rows.Scan(&m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
