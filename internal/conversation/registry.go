package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/reflectbot/internal/intent"
)

// PriorTurns reports how many turns a session already took before its
// engine was created, typically by counting persisted user messages.
type PriorTurns func() (int, error)

// Commit persists a turn. It runs while the session is still locked, so
// turns of one session are stored in turn order.
type Commit func(Turn) error

type slot struct {
	mu      sync.Mutex
	engine  *Engine
	touched time.Time // guarded by Registry.mu
}

// Registry keeps one Engine per session. Turns for the same session run
// one at a time; different sessions never share state.
type Registry struct {
	classifier *intent.Classifier
	opts       []Option
	now        func() time.Time

	mu    sync.Mutex
	slots map[string]*slot
}

// NewRegistry returns an empty registry whose engines use c and opts.
func NewRegistry(c *intent.Classifier, opts ...Option) *Registry {
	return &Registry{
		classifier: c,
		opts:       opts,
		now:        time.Now,
		slots:      make(map[string]*slot),
	}
}

func (r *Registry) slot(id string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		s = &slot{}
		r.slots[id] = s
	}
	s.touched = r.now()
	return s
}

// Start creates a fresh engine for a new session and returns its opening
// message. An existing engine for id is replaced.
func (r *Registry) Start(id string) string {
	s := r.slot(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = NewEngine(r.classifier, r.opts...)
	return s.engine.Start()
}

// Respond runs one turn for session id and hands it to commit before the
// session is unlocked. If the session has no engine in memory, one is
// created and resumed from prior. When commit fails the engine is
// forgotten, so the next turn resumes from what was actually stored.
func (r *Registry) Respond(id, msg string, prior PriorTurns, commit Commit) (Turn, error) {
	s := r.slot(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		e := NewEngine(r.classifier, r.opts...)
		if prior != nil {
			n, err := prior()
			if err != nil {
				return Turn{}, fmt.Errorf("load prior turns: %w", err)
			}
			if err := e.Resume(n); err != nil {
				return Turn{}, fmt.Errorf("resume session: %w", err)
			}
		}
		s.engine = e
	}

	s.engine.Respond(msg)
	t, _ := s.engine.LastTurn()
	if commit != nil {
		if err := commit(t); err != nil {
			s.engine = nil
			return Turn{}, fmt.Errorf("commit turn: %w", err)
		}
	}
	return t, nil
}

// TurnCount returns the in-memory turn count for id.
func (r *Registry) TurnCount(id string) (int, bool) {
	r.mu.Lock()
	s, ok := r.slots[id]
	r.mu.Unlock()
	if !ok {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return 0, false
	}
	return s.engine.TurnCount(), true
}

// Has reports whether id has an engine in memory.
func (r *Registry) Has(id string) bool {
	_, ok := r.TurnCount(id)
	return ok
}

// Drop forgets the engine for id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.slots, id)
	r.mu.Unlock()
}

// Sweep forgets every session not touched within idle and returns how many
// were removed. Forgotten sessions resume from PriorTurns on their next
// message.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.slots {
		if s.touched.Before(cutoff) {
			delete(r.slots, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
