//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reflectbot/internal/analysis"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func createTestSession(t *testing.T, s *Store) *Session {
	t.Helper()
	ctx := context.Background()
	userID := "integration-test-" + uuid.New().String()[:8]
	sess, err := s.CreateSession(ctx, uuid.New(), userID, "Halo! Apa kabar?")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM chat_sessions WHERE id = $1", sess.ID)
	})
	return sess
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)

	if sess.Status != StatusActive {
		t.Errorf("expected status active, got %q", sess.Status)
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.UserID != sess.UserID || got.EndedAt != nil {
		t.Errorf("unexpected session %+v", got)
	}

	list, err := s.ListSessions(ctx, sess.UserID)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != sess.ID {
		t.Errorf("expected one listed session, got %+v", list)
	}

	msgs, err := s.ListMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Sender != SenderBot || msgs[0].Turn != 0 {
		t.Errorf("expected greeting as the only message, got %+v", msgs)
	}

	if err := s.MarkSessionStatus(ctx, sess.ID, StatusAnalyzed); err != nil {
		t.Fatalf("MarkSessionStatus failed: %v", err)
	}
	got, _ = s.GetSession(ctx, sess.ID)
	if got.Status != StatusAnalyzed || got.EndedAt == nil {
		t.Errorf("expected analyzed session with end time, got %+v", got)
	}

	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.GetSession(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	msgs, err = s.ListMessages(ctx, sess.ID)
	if err != nil || len(msgs) != 0 {
		t.Errorf("expected messages deleted with session, got %d (%v)", len(msgs), err)
	}
	if err := s.DeleteSession(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestIntegration_Exchanges(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)

	at := time.Now().UTC().Truncate(time.Millisecond)
	for i, text := range []string{"aku sedih", "aku takut ditinggal", "terima kasih"} {
		err := s.AddExchange(ctx, sess.ID, Exchange{
			Turn:        i + 1,
			Intent:      "general",
			UserMessage: text,
			BotResponse: "Aku mendengarkan.",
			At:          at.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AddExchange %d failed: %v", i, err)
		}
	}

	n, err := s.CountUserMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("CountUserMessages failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 user messages, got %d", n)
	}

	user, err := s.LoadUserMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("LoadUserMessages failed: %v", err)
	}
	if len(user) != 3 || user[0].Content != "aku sedih" || user[2].Content != "terima kasih" {
		t.Errorf("unexpected user messages %+v", user)
	}

	all, err := s.ListMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected greeting plus 6 messages, got %d", len(all))
	}
	if all[1].Sender != SenderUser || all[2].Sender != SenderBot || all[2].Turn != 1 {
		t.Errorf("unexpected ordering %+v", all[1:3])
	}

	err = s.AddExchange(ctx, uuid.New(), Exchange{Turn: 1, UserMessage: "x", BotResponse: "y", At: at})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown session, got %v", err)
	}
}

func TestIntegration_AnalysisStoredOnce(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)

	none, err := s.LoadAnalysis(ctx, sess.ID)
	if err != nil || none != nil {
		t.Fatalf("expected no analysis yet, got %+v (%v)", none, err)
	}

	res := &analysis.Result{
		SessionID:  sess.ID,
		Cached:     true,
		AnalyzedAt: time.Now().UTC().Truncate(time.Millisecond),
		AttachmentStyle: analysis.AttachmentStyle{
			Prediction:    "anxious",
			Confidence:    0.6,
			Probabilities: map[string]float64{"secure": 0.2, "anxious": 0.6, "avoidant": 0.2},
		},
		AIInsights: "ringkasan",
	}
	ok, err := s.InsertAnalysis(ctx, res)
	if err != nil || !ok {
		t.Fatalf("InsertAnalysis = %v, %v; want true, nil", ok, err)
	}

	second := *res
	second.AIInsights = "ringkasan lain"
	ok, err = s.InsertAnalysis(ctx, &second)
	if err != nil || ok {
		t.Fatalf("second InsertAnalysis = %v, %v; want false, nil", ok, err)
	}

	got, err := s.LoadAnalysis(ctx, sess.ID)
	if err != nil {
		t.Fatalf("LoadAnalysis failed: %v", err)
	}
	if got.AIInsights != "ringkasan" || got.Cached {
		t.Errorf("expected first stored analysis without cached flag, got %+v", got)
	}
	if !got.AnalyzedAt.Equal(res.AnalyzedAt) {
		t.Errorf("AnalyzedAt = %v, want %v", got.AnalyzedAt, res.AnalyzedAt)
	}

	updated, _ := s.GetSession(ctx, sess.ID)
	if updated.Status != StatusAnalyzed {
		t.Errorf("expected session marked analyzed, got %q", updated.Status)
	}
}
