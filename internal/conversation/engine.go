// Package conversation drives a dialogue turn by turn: it counts turns,
// classifies each user message, keeps the session history, and composes
// the bot's reply from the matched intent.
package conversation

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/MikeSquared-Agency/reflectbot/internal/intent"
)

// FollowUpTurnLimit is the last turn on which a follow-up question is
// appended to the reply.
const FollowUpTurnLimit = 10

const separator = "\n\n"

// ErrAlreadyStarted is returned by Resume on an engine that has taken turns.
var ErrAlreadyStarted = errors.New("conversation already has turns")

// Turn is one user message and the reply to it. Turn numbers start at 1.
type Turn struct {
	Turn        int       `json:"turn"`
	UserMessage string    `json:"user_message"`
	Intent      string    `json:"intent"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Option configures an Engine.
type Option func(*Engine)

// WithPicker sets the random source used to choose replies.
func WithPicker(p Picker) Option {
	return func(e *Engine) { e.picker = p }
}

// WithClock sets the time source used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine holds the state of one conversation. It is not safe for
// concurrent use; Registry serializes access per session.
type Engine struct {
	classifier *intent.Classifier
	picker     Picker
	now        func() time.Time

	turnCount int
	history   []Turn
}

// NewEngine returns a fresh engine classifying with c.
func NewEngine(c *intent.Classifier, opts ...Option) *Engine {
	e := &Engine{
		classifier: c,
		picker:     globalPicker{},
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Start returns the opening message: a greeting and a greeting follow-up,
// each chosen independently.
func (e *Engine) Start() string {
	g, ok := e.classifier.Catalog().Get(intent.Greeting)
	if !ok {
		return ""
	}
	reply := e.pick(g.Responses)
	if len(g.FollowUps) > 0 {
		reply += separator + e.pick(g.FollowUps)
	}
	return reply
}

// Respond advances the turn counter, classifies msg against the new count,
// records the turn, and returns the composed reply.
func (e *Engine) Respond(msg string) string {
	e.turnCount++

	name := e.classifier.Classify(msg, e.turnCount)
	e.history = append(e.history, Turn{
		Turn:        e.turnCount,
		UserMessage: msg,
		Intent:      name,
		Timestamp:   e.now(),
	})

	in, _ := e.classifier.Catalog().Get(name)
	reply := e.pick(in.Responses)
	if e.turnCount <= FollowUpTurnLimit && len(in.FollowUps) > 0 {
		reply += separator + e.pick(in.FollowUps)
	}

	e.history[len(e.history)-1].BotResponse = reply
	return reply
}

// Resume primes a fresh engine with the number of turns already taken in
// a persisted conversation, so turn gates keep counting from there.
// History is not rebuilt.
func (e *Engine) Resume(turns int) error {
	if e.turnCount != 0 || len(e.history) != 0 {
		return ErrAlreadyStarted
	}
	if turns < 0 {
		return errors.New("negative turn count")
	}
	e.turnCount = turns
	return nil
}

// TurnCount returns the number of turns taken.
func (e *Engine) TurnCount() int { return e.turnCount }

// History returns a copy of the turns recorded by this engine.
func (e *Engine) History() []Turn {
	out := make([]Turn, len(e.history))
	copy(out, e.history)
	return out
}

// LastTurn returns the most recent turn, if any.
func (e *Engine) LastTurn() (Turn, bool) {
	if len(e.history) == 0 {
		return Turn{}, false
	}
	return e.history[len(e.history)-1], true
}

func (e *Engine) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[e.picker.IntN(len(options))]
}
