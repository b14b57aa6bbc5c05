package insight

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/agenthands/carecircle/internal/core/cache"
	"github.com/agenthands/carecircle/internal/core/model"
	"github.com/agenthands/carecircle/internal/core/retry"
	"github.com/agenthands/carecircle/internal/llm"
	"github.com/agenthands/carecircle/internal/store"
)

type MockLLM struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	ErrQueue      []error
	Err           error
	Requests      []llm.Request
	// Gate, when set, blocks Generate until it is closed.
	Gate chan struct{}
	// Entered, when set, is closed once the first Generate call starts.
	Entered     chan struct{}
	enteredOnce sync.Once
}

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	if m.Entered != nil {
		m.enteredOnce.Do(func() { close(m.Entered) })
	}
	if m.Gate != nil {
		<-m.Gate
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	if len(m.ErrQueue) > 0 {
		err := m.ErrQueue[0]
		m.ErrQueue = m.ErrQueue[1:]
		if err != nil {
			return "", err
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockLLM) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return ""
	}
	msgs := m.Requests[len(m.Requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

type mockStore struct {
	mu        sync.Mutex
	Memories  []model.Memory
	Signals   []model.BehavioralSignal
	Metrics   []model.HealthMetric
	Alerts    []model.HealthAlert
	Err       error
	WriteErr  error
	Reads     int
	Filters   []store.Filter
	Questions []model.QuestionAnswer
	Answers   map[string]string
}

func (s *mockStore) read(f store.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	s.Filters = append(s.Filters, f)
	return s.Err
}

func (s *mockStore) ListMemories(ctx context.Context, f store.Filter) ([]model.Memory, error) {
	if err := s.read(f); err != nil {
		return nil, err
	}
	if f.Limit > 0 && len(s.Memories) > f.Limit {
		return s.Memories[:f.Limit], nil
	}
	return s.Memories, nil
}

func (s *mockStore) ListSignals(ctx context.Context, f store.Filter) ([]model.BehavioralSignal, error) {
	if err := s.read(f); err != nil {
		return nil, err
	}
	return s.Signals, nil
}

func (s *mockStore) ListHealthMetrics(ctx context.Context, f store.Filter) ([]model.HealthMetric, error) {
	if err := s.read(f); err != nil {
		return nil, err
	}
	return s.Metrics, nil
}

func (s *mockStore) ListHealthAlerts(ctx context.Context, f store.AlertFilter) ([]model.HealthAlert, error) {
	if err := s.read(f.Filter); err != nil {
		return nil, err
	}
	return s.Alerts, nil
}

func (s *mockStore) SaveQuestion(ctx context.Context, subjectID, question string) (model.QuestionAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return model.QuestionAnswer{}, s.WriteErr
	}
	qa := model.QuestionAnswer{ID: "q-" + question, SubjectID: subjectID, Question: question}
	s.Questions = append(s.Questions, qa)
	return qa, nil
}

func (s *mockStore) AnswerQuestion(ctx context.Context, id, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	s.Answers[id] = answer
	return nil
}

func (s *mockStore) ReadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Reads
}

type instantTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

var testNow = time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)

type fixture struct {
	llm   *MockLLM
	store *mockStore
	clock clockwork.FakeClock
	timer *instantTimer
	a     *Assistant
}

func newFixture(client *MockLLM, st *mockStore) *fixture {
	clock := clockwork.NewFakeClockAt(testNow)
	timer := &instantTimer{c: make(chan time.Time, 1)}
	cfg := Config{
		Store: st,
		Cache: cache.New(5*time.Minute, 100, clock),
		Retry: retry.Policy{
			Retries:  2,
			Delay:    time.Second,
			NewTimer: func() backoff.Timer { return timer },
		},
		Model:  "test-model",
		Clock:  clock,
		Logger: log.New(io.Discard),
	}
	if client != nil {
		cfg.LLM = client
	}
	return &fixture{llm: client, store: st, clock: clock, timer: timer, a: New(cfg)}
}

func memory(id, text string, tags ...string) model.Memory {
	if tags == nil {
		tags = []string{}
	}
	return model.Memory{
		ID:        id,
		SubjectID: "elder-1",
		RawText:   text,
		Type:      model.MemoryStory,
		Tags:      tags,
		CreatedAt: testNow.Add(-time.Hour),
	}
}
