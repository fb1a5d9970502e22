package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reflectbot/internal/analysis"
	"github.com/MikeSquared-Agency/reflectbot/internal/conversation"
	"github.com/MikeSquared-Agency/reflectbot/internal/hermes"
	"github.com/MikeSquared-Agency/reflectbot/internal/store"
)

type createSessionResponse struct {
	ID       uuid.UUID `json:"id"`
	Greeting string    `json:"greeting"`
}

type messageResponse struct {
	User   string `json:"user"`
	Bot    string `json:"bot"`
	Intent string `json:"intent"`
	Turn   int    `json:"turn"`
}

type explainResponse struct {
	Phrase      string `json:"phrase"`
	Explanation string `json:"explanation"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.New()
	greeting := s.chat.Start(id.String())

	sess, err := s.store.CreateSession(r.Context(), id, userFrom(r.Context()), greeting)
	if err != nil {
		s.chat.Drop(id.String())
		s.fail(w, r, err)
		return
	}
	s.logger.Info("session started", "session_id", sess.ID, "user_id", sess.UserID)
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: sess.ID, Greeting: greeting})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteSession(r.Context(), sess.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.chat.Drop(sess.ID.String())
	s.logger.Info("session deleted", "session_id", sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	msgs, err := s.store.ListMessages(r.Context(), sess.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	msg, err := field(r, "message")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	key := sess.ID.String()
	prior := func() (int, error) {
		return s.store.CountUserMessages(ctx, sess.ID)
	}
	commit := func(t conversation.Turn) error {
		return s.store.AddExchange(ctx, sess.ID, store.Exchange{
			Turn:        t.Turn,
			Intent:      t.Intent,
			UserMessage: t.UserMessage,
			BotResponse: t.BotResponse,
			At:          t.Timestamp,
		})
	}
	turn, err := s.chat.Respond(key, msg, prior, commit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	evt := hermes.TurnEvent{
		SessionID:   key,
		Turn:        turn.Turn,
		Intent:      turn.Intent,
		UserMessage: turn.UserMessage,
		BotResponse: turn.BotResponse,
		Timestamp:   turn.Timestamp,
	}
	if err := s.publisher.Publish(hermes.SubjectChatTurn, evt); err != nil {
		s.logger.Warn("failed to publish turn event", "session_id", key, "error", err)
	}

	writeJSON(w, http.StatusOK, messageResponse{
		User:   turn.UserMessage,
		Bot:    turn.BotResponse,
		Intent: turn.Intent,
		Turn:   turn.Turn,
	})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalyzeTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.analysis.Analyze(ctx, sess.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// The conversation is over once analyzed; a later message resumes it
	// from the store.
	s.chat.Drop(sess.ID.String())
	s.logger.Debug("analyze served",
		"session_id", sess.ID,
		"cached", res.Cached,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	phrase, err := field(r, "phrase")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalyzeTimeout)
	defer cancel()

	text, err := s.analysis.Explain(ctx, sess.ID, phrase)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, explainResponse{Phrase: phrase, Explanation: text})
}

// ownedSession loads the session named in the URL. Sessions of other
// users are reported as missing.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if sess.UserID != userFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, analysis.ErrNoConversation),
		errors.Is(err, analysis.ErrInsufficientData),
		errors.Is(err, analysis.ErrEmptyPhrase):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrNotAnalyzed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// field reads name from a JSON object body or from form values.
func field(r *http.Request, name string) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", errors.New("invalid JSON body")
		}
		v, _ := body[name].(string)
		return strings.TrimSpace(v), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", errors.New("invalid form body")
	}
	return strings.TrimSpace(r.FormValue(name)), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
