package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/reflectbot/internal/hermes"
	"github.com/MikeSquared-Agency/reflectbot/internal/insight"
)

// Repository is the persistence the service needs.
type Repository interface {
	// LoadAnalysis returns the stored analysis, or nil if there is none.
	LoadAnalysis(ctx context.Context, sessionID uuid.UUID) (*Result, error)
	// LoadUserMessages returns the session's user messages in order.
	LoadUserMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error)
	// InsertAnalysis stores r and marks its session analyzed. It reports
	// false, without error, when the session already has an analysis.
	InsertAnalysis(ctx context.Context, r *Result) (bool, error)
}

// DefaultTimeout bounds one shared analysis run.
const DefaultTimeout = 180 * time.Second

// Service runs analyses and serves stored ones.
type Service struct {
	repo      Repository
	agg       *Aggregator
	narrator  insight.Narrator
	publisher hermes.Publisher
	logger    *slog.Logger
	timeout   time.Duration

	group singleflight.Group
}

func NewService(repo Repository, agg *Aggregator, narrator insight.Narrator, pub hermes.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		agg:       agg,
		narrator:  narrator,
		publisher: pub,
		logger:    logger,
		timeout:   DefaultTimeout,
	}
}

// SetTimeout changes how long a shared analysis run may take.
func (s *Service) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Analyze returns the session's analysis, computing and storing it on the
// first call. Later calls return the stored record with Cached set.
// Concurrent first calls for one session share a single computation. The
// computation is not tied to any caller: a caller that gives up gets its
// own context error while the others still receive the result.
func (s *Service) Analyze(ctx context.Context, sessionID uuid.UUID) (*Result, error) {
	ch := s.group.DoChan(sessionID.String(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.analyze(runCtx, sessionID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*Result)
		return &res, nil
	}
}

func (s *Service) analyze(ctx context.Context, sessionID uuid.UUID) (*Result, error) {
	stored, err := s.repo.LoadAnalysis(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}
	if stored != nil {
		stored.Cached = true
		return stored, nil
	}

	msgs, err := s.repo.LoadUserMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	res, err := s.agg.Aggregate(ctx, sessionID, msgs)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repo.InsertAnalysis(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	if !inserted {
		// Another process stored one first; serve that one.
		stored, err := s.repo.LoadAnalysis(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load analysis after conflict: %w", err)
		}
		if stored == nil {
			return nil, errors.New("analysis conflict but no stored record")
		}
		s.logger.Info("analysis already stored by another writer", "session_id", sessionID)
		stored.Cached = true
		return stored, nil
	}

	s.logger.Info("session analyzed",
		"session_id", sessionID,
		"attachment_style", res.AttachmentStyle.Prediction,
		"confidence", res.AttachmentStyle.Confidence,
		"messages", res.TextStatistics.TotalMessages,
	)

	evt := hermes.AnalysisEvent{
		SessionID:       sessionID.String(),
		AttachmentStyle: res.AttachmentStyle.Prediction,
		Confidence:      res.AttachmentStyle.Confidence,
		TotalMessages:   res.TextStatistics.TotalMessages,
		AnalyzedAt:      res.AnalyzedAt,
	}
	if err := s.publisher.Publish(hermes.SubjectSessionAnalyzed, evt); err != nil {
		s.logger.Warn("failed to publish analysis event", "session_id", sessionID, "error", err)
	}

	res.Cached = false
	return res, nil
}

// Explain asks the narrator what phrase says about the user, given the
// session's stored analysis. Narrator failures yield a fallback text.
func (s *Service) Explain(ctx context.Context, sessionID uuid.UUID, phrase string) (string, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return "", ErrEmptyPhrase
	}

	stored, err := s.repo.LoadAnalysis(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load analysis: %w", err)
	}
	if stored == nil {
		return "", ErrNotAnalyzed
	}

	msgs, err := s.repo.LoadUserMessages(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load messages: %w", err)
	}
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Content
	}
	excerpt := insight.TruncateContext(strings.Join(texts, "\n"))

	text, err := s.narrator.Explain(ctx, phrase, excerpt, stored.AttachmentStyle.Prediction)
	if err != nil {
		s.logger.Warn("phrase explanation failed, using fallback",
			"session_id", sessionID,
			"phrase", phrase,
			"error", err,
		)
		return insight.Fallback(err), nil
	}
	return text, nil
}
