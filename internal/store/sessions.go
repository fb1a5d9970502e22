package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	StatusActive   = "active"
	StatusAnalyzed = "analyzed"
)

type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// CreateSession opens session id for userID and stores the bot's greeting
// as its first message.
func (s *Store) CreateSession(ctx context.Context, id uuid.UUID, userID, greeting string) (*Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sess := Session{ID: id, UserID: userID, Status: StatusActive}
	err = tx.QueryRow(ctx, `
		INSERT INTO chat_sessions (id, user_id, status, started_at)
		VALUES ($1, $2, $3, now())
		RETURNING started_at`,
		sess.ID, userID, StatusActive,
	).Scan(&sess.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_messages (id, session_id, sender, content, intent, turn, created_at)
		VALUES ($1, $2, $3, $4, 'greeting', 0, $5)`,
		uuid.New(), sess.ID, SenderBot, greeting, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert greeting: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &sess, nil
}

// GetSession fetches a session by ID.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, status, started_at, ended_at
		FROM chat_sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.Status, &sess.StartedAt, &sess.EndedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

// ListSessions returns the sessions of userID, newest first.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, status, started_at, ended_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Status, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session; its messages and analysis go with it.
func (s *Store) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSessionStatus sets a session's status. Leaving the active state
// also records when the session ended.
func (s *Store) MarkSessionStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE chat_sessions
		SET status = $1,
		    ended_at = CASE WHEN $1 = 'active' THEN NULL ELSE COALESCE(ended_at, now()) END
		WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
