package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/reflectbot/internal/analysis"
)

// LoadAnalysis returns the stored analysis of a session, or nil if it has
// not been analyzed.
func (s *Store) LoadAnalysis(ctx context.Context, sessionID uuid.UUID) (*analysis.Result, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT result FROM session_analyses WHERE session_id = $1`, sessionID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}

	var res analysis.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &res, nil
}

// InsertAnalysis stores an analysis and marks its session analyzed in one
// transaction. It returns false when the session already has one.
func (s *Store) InsertAnalysis(ctx context.Context, r *analysis.Result) (bool, error) {
	stored := *r
	stored.Cached = false
	raw, err := json.Marshal(stored)
	if err != nil {
		return false, fmt.Errorf("encode analysis: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO session_analyses (id, session_id, attachment_style, confidence, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO NOTHING`,
		uuid.New(), r.SessionID, r.AttachmentStyle.Prediction, r.AttachmentStyle.Confidence, raw, r.AnalyzedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert analysis: %w", notFound(err))
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE chat_sessions
		SET status = $1, ended_at = COALESCE(ended_at, now())
		WHERE id = $2`,
		StatusAnalyzed, r.SessionID,
	)
	if err != nil {
		return false, fmt.Errorf("mark session analyzed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
