package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reflectbot/internal/hermes"
	"github.com/MikeSquared-Agency/reflectbot/internal/predictor"
	"github.com/MikeSquared-Agency/reflectbot/internal/textnorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepo stores analyses as JSON, like the JSONB column does.
type fakeRepo struct {
	mu       sync.Mutex
	msgs     map[uuid.UUID][]Message
	analyses map[uuid.UUID][]byte
	inserts  int
	// conflict is stored as if by another writer just before the next insert.
	conflict *Result
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		msgs:     make(map[uuid.UUID][]Message),
		analyses: make(map[uuid.UUID][]byte),
	}
}

func (r *fakeRepo) addMessages(id uuid.UUID, texts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	for _, t := range texts {
		r.msgs[id] = append(r.msgs[id], Message{Content: t, CreatedAt: base.Add(time.Duration(len(r.msgs[id])) * time.Minute)})
	}
}

func (r *fakeRepo) LoadAnalysis(_ context.Context, id uuid.UUID) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.analyses[id]
	if !ok {
		return nil, nil
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *fakeRepo) LoadUserMessages(_ context.Context, id uuid.UUID) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs[id]...), nil
}

func (r *fakeRepo) InsertAnalysis(_ context.Context, res *Result) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflict != nil {
		data, _ := json.Marshal(r.conflict)
		r.analyses[r.conflict.SessionID] = data
		r.conflict = nil
	}
	if _, exists := r.analyses[res.SessionID]; exists {
		return false, nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return false, err
	}
	r.analyses[res.SessionID] = data
	r.inserts++
	return true, nil
}

type countingPredictor struct {
	next  predictor.Predictor
	err   error
	calls atomic.Int32
	delay time.Duration

	// When gate is set, Predict signals started and waits for gate to close
	// or for its context to end.
	gate    chan struct{}
	started chan struct{}
}

func (p *countingPredictor) Predict(ctx context.Context, text string) (*predictor.Prediction, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.gate != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.next.Predict(ctx, text)
}

type fakeNarrator struct {
	summary string
	err     error

	mu          sync.Mutex
	lastPhrases []string
	lastExcerpt string
	lastLabel   string
}

func (n *fakeNarrator) Summarize(_ context.Context, _ string, phrases []string, _ map[string]float64) (string, error) {
	n.mu.Lock()
	n.lastPhrases = phrases
	n.mu.Unlock()
	return n.summary, n.err
}

func (n *fakeNarrator) Explain(_ context.Context, phrase, excerpt, label string) (string, error) {
	n.mu.Lock()
	n.lastExcerpt, n.lastLabel = excerpt, label
	n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	return "penjelasan " + phrase, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []hermes.AnalysisEvent
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	if subject != hermes.SubjectSessionAnalyzed {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, data.(hermes.AnalysisEvent))
	return nil
}

type harness struct {
	repo      *fakeRepo
	pred      *countingPredictor
	narrator  *fakeNarrator
	publisher *recordingPublisher
	svc       *Service
	norm      *textnorm.Normalizer
}

func newHarness() *harness {
	norm := textnorm.New()
	h := &harness{
		repo:      newFakeRepo(),
		pred:      &countingPredictor{next: predictor.NewLexicon(norm)},
		narrator:  &fakeNarrator{summary: "1. Ringkasan Emosional ..."},
		publisher: &recordingPublisher{},
		norm:      norm,
	}
	agg := NewAggregator(norm, h.pred, h.narrator, discardLogger())
	h.svc = NewService(h.repo, agg, h.narrator, h.publisher, discardLogger())
	return h
}

var scenario = []string{
	"saya merasa sedih",
	"saya merasa sedih",
	"kenapa saya selalu begini",
	"dia tidak peduli",
	"saya butuh waktu sendiri",
}

func TestAnalyze_Scenario(t *testing.T) {
	h := newHarness()
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	res, err := h.svc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Cached {
		t.Error("first analysis must not be cached")
	}
	if res.SessionID != id {
		t.Errorf("SessionID = %v, want %v", res.SessionID, id)
	}
	if res.TextStatistics.TotalMessages != 5 {
		t.Errorf("TotalMessages = %d, want 5", res.TextStatistics.TotalMessages)
	}
	if res.TextStatistics.AvgMessageLength != 3.4 {
		t.Errorf("AvgMessageLength = %v, want 3.4", res.TextStatistics.AvgMessageLength)
	}

	want := h.norm.Normalize("merasa sedih")
	top := res.PhraseAnalysis.TopPhrases
	if len(top) == 0 || top[0].Phrase != want {
		t.Fatalf("expected %q ranked first, got %+v", want, top)
	}
	if top[0].Frequency != 2 || top[0].Importance != ImportanceMedium || top[0].Percentage != 40 {
		t.Errorf("unexpected ranking for %q: %+v", want, top[0])
	}
	for _, p := range top[1:] {
		if p.Frequency != 1 || p.Importance != ImportanceLow {
			t.Errorf("unexpected ranking for %q: %+v", p.Phrase, p)
		}
	}
	if res.PhraseAnalysis.TotalUniquePhrases != 5 || res.PhraseAnalysis.TotalPhrasesExtracted != 6 {
		t.Errorf("phrase totals = %d unique / %d extracted, want 5 / 6",
			res.PhraseAnalysis.TotalUniquePhrases, res.PhraseAnalysis.TotalPhrasesExtracted)
	}

	if len(res.Timeline) != 5 || res.Timeline[2].Content != scenario[2] || res.Timeline[2].WordCount != 4 {
		t.Errorf("unexpected timeline %+v", res.Timeline)
	}
	if res.AIInsights != "1. Ringkasan Emosional ..." {
		t.Errorf("AIInsights = %q", res.AIInsights)
	}
	if diff := cmp.Diff(res.AttachmentStyle.Probabilities, res.RuleScores); diff != "" {
		t.Errorf("rule scores differ from probabilities:\n%s", diff)
	}
	if len(h.narrator.lastPhrases) == 0 || h.narrator.lastPhrases[0] != want {
		t.Errorf("narrator got phrases %v", h.narrator.lastPhrases)
	}

	if len(h.publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(h.publisher.events))
	}
	if evt := h.publisher.events[0]; evt.SessionID != id.String() || evt.TotalMessages != 5 {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestAnalyze_MessageThreshold(t *testing.T) {
	tests := []struct {
		name    string
		msgs    []string
		wantErr error
	}{
		{"no messages", nil, ErrNoConversation},
		{"four messages", scenario[:4], ErrInsufficientData},
		{"five messages", scenario, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			id := uuid.New()
			h.repo.addMessages(id, tt.msgs...)

			_, err := h.svc.Analyze(context.Background(), id)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if h.repo.inserts != 0 || h.pred.calls.Load() != 0 {
				t.Errorf("rejected analysis touched predictor (%d) or store (%d)", h.pred.calls.Load(), h.repo.inserts)
			}
		})
	}
}

func TestAnalyze_SecondCallIsCached(t *testing.T) {
	h := newHarness()
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	first, err := h.svc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	// A later message must not change the stored analysis.
	h.repo.addMessages(id, "aku takut ditinggal")

	second, err := h.svc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(Result{}, "Cached")); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}
	if got := h.pred.calls.Load(); got != 1 {
		t.Errorf("predictor called %d times, want 1", got)
	}
	if len(h.publisher.events) != 1 {
		t.Errorf("published %d events, want 1", len(h.publisher.events))
	}
}

func TestAnalyze_PredictorFailureStoresNothing(t *testing.T) {
	h := newHarness()
	boom := &predictor.Error{Op: "call model server", Err: errors.New("connection refused")}
	h.pred.err = boom
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	_, err := h.svc.Analyze(context.Background(), id)
	var pe *predictor.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *predictor.Error, got %v", err)
	}
	if h.repo.inserts != 0 {
		t.Errorf("stored %d analyses after predictor failure", h.repo.inserts)
	}
	if len(h.publisher.events) != 0 {
		t.Errorf("published %d events after failure", len(h.publisher.events))
	}
}

func TestAnalyze_NarratorFailureDegrades(t *testing.T) {
	h := newHarness()
	h.narrator.err = errors.New("quota exceeded")
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	res, err := h.svc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("narrator failure must not fail analysis: %v", err)
	}
	if res.AIInsights != "[AI insight unavailable] quota exceeded" {
		t.Errorf("AIInsights = %q", res.AIInsights)
	}
	if h.repo.inserts != 1 {
		t.Errorf("inserts = %d, want 1", h.repo.inserts)
	}
}

func TestAnalyze_InsertConflictServesStored(t *testing.T) {
	h := newHarness()
	id := uuid.New()
	h.repo.addMessages(id, scenario...)
	other := &Result{
		SessionID:       id,
		AnalyzedAt:      time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		AttachmentStyle: AttachmentStyle{Prediction: predictor.Avoidant, Confidence: 0.9},
		AIInsights:      "from another writer",
	}
	h.repo.conflict = other

	res, err := h.svc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.Cached || res.AIInsights != "from another writer" || res.AttachmentStyle.Prediction != predictor.Avoidant {
		t.Errorf("expected the stored record, got %+v", res)
	}
	if len(h.publisher.events) != 0 {
		t.Errorf("conflict loser must not publish, got %d events", len(h.publisher.events))
	}
}

func TestAnalyze_ConcurrentCallsComputeOnce(t *testing.T) {
	h := newHarness()
	h.pred.delay = 20 * time.Millisecond
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	const n = 10
	results := make([]*Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.svc.Analyze(context.Background(), id)
			if err != nil {
				t.Errorf("Analyze: %v", err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	if got := h.pred.calls.Load(); got != 1 {
		t.Errorf("predictor called %d times, want 1", got)
	}
	if h.repo.inserts != 1 {
		t.Errorf("inserts = %d, want 1", h.repo.inserts)
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		if diff := cmp.Diff(results[0], r, cmpopts.IgnoreFields(Result{}, "Cached")); diff != "" {
			t.Errorf("concurrent results differ:\n%s", diff)
		}
	}
}

func TestAnalyze_CanceledCallerDoesNotFailOthers(t *testing.T) {
	h := newHarness()
	h.pred.gate = make(chan struct{})
	h.pred.started = make(chan struct{}, 1)
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := h.svc.Analyze(ctxA, id)
		errA <- err
	}()
	<-h.pred.started

	type outcome struct {
		res *Result
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := h.svc.Analyze(context.Background(), id)
		doneB <- outcome{res, err}
	}()
	// Give the second caller time to join the running analysis.
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled caller got %v, want context.Canceled", err)
	}
	close(h.pred.gate)

	b := <-doneB
	if b.err != nil {
		t.Fatalf("other caller failed: %v", b.err)
	}
	if b.res == nil || b.res.SessionID != id {
		t.Fatalf("unexpected result %+v", b.res)
	}
	if got := h.pred.calls.Load(); got != 1 {
		t.Errorf("predictor called %d times, want 1", got)
	}
	if h.repo.inserts != 1 {
		t.Errorf("inserts = %d, want 1", h.repo.inserts)
	}
}

func TestAnalyze_SharedRunHasOwnTimeout(t *testing.T) {
	h := newHarness()
	h.pred.gate = make(chan struct{})
	h.pred.started = make(chan struct{}, 1)
	h.svc.SetTimeout(10 * time.Millisecond)
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	_, err := h.svc.Analyze(context.Background(), id)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if h.repo.inserts != 0 {
		t.Errorf("inserts = %d, want 0", h.repo.inserts)
	}
}

func TestExplain(t *testing.T) {
	h := newHarness()
	id := uuid.New()
	h.repo.addMessages(id, scenario...)

	if _, err := h.svc.Explain(context.Background(), id, "rasa sedih"); !errors.Is(err, ErrNotAnalyzed) {
		t.Fatalf("before analysis err = %v, want ErrNotAnalyzed", err)
	}
	res, err := h.svc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.Explain(context.Background(), id, "   "); !errors.Is(err, ErrEmptyPhrase) {
		t.Errorf("blank phrase err = %v, want ErrEmptyPhrase", err)
	}

	got, err := h.svc.Explain(context.Background(), id, " rasa sedih ")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got != "penjelasan rasa sedih" {
		t.Errorf("Explain = %q", got)
	}
	if h.narrator.lastLabel != res.AttachmentStyle.Prediction {
		t.Errorf("narrator label = %q, want %q", h.narrator.lastLabel, res.AttachmentStyle.Prediction)
	}
	if !strings.HasPrefix(h.narrator.lastExcerpt, "saya merasa sedih\nsaya merasa sedih") {
		t.Errorf("unexpected excerpt %q", h.narrator.lastExcerpt)
	}

	h.narrator.err = errors.New("timeout")
	got, err = h.svc.Explain(context.Background(), id, "rasa sedih")
	if err != nil {
		t.Fatalf("narrator failure must not fail Explain: %v", err)
	}
	if got != "[AI insight unavailable] timeout" {
		t.Errorf("Explain fallback = %q", got)
	}
}
