package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/carecircle/internal/core/model"
	"github.com/agenthands/carecircle/internal/llm"
)

const moodJSON = `{
	"mood": "Happy",
	"sentiment_score": 0.7,
	"explanation": "Lots of time with family this week.",
	"recommendations": ["Plan another lake visit", " "],
	"trend": "improving"
}`

func TestInferMood_MissingKeyReturnsDefault(t *testing.T) {
	st := &mockStore{Memories: []model.Memory{memory("m1", "Lovely day")}}
	f := newFixture(nil, st)

	got := f.a.InferMood(context.Background(), "elder-1")

	assert.Equal(t, model.MoodAnalysis{
		Mood:            "stable",
		SentimentScore:  0,
		Explanation:     "Analysis unavailable",
		Recommendations: []string{},
		Trend:           "stable",
	}, got)
	assert.Zero(t, st.ReadCount(), "no store or network access without a key")
}

func TestInferMood_Success(t *testing.T) {
	client := &MockLLM{Response: moodJSON}
	st := &mockStore{
		Memories: []model.Memory{memory("m1", "Went to the lake with grandson Tommy", "family")},
		Signals: []model.BehavioralSignal{
			{SignalType: "sleep", Severity: "low", Description: "Slept in", DetectedAt: testNow.Add(-24 * time.Hour)},
		},
	}
	f := newFixture(client, st)

	got := f.a.InferMood(context.Background(), "elder-1")

	assert.Equal(t, "happy", got.Mood)
	assert.Equal(t, 0.7, got.SentimentScore)
	assert.Equal(t, []string{"Plan another lake visit"}, got.Recommendations)
	assert.Equal(t, model.TrendImproving, got.Trend)

	require.Len(t, client.Requests, 1)
	req := client.Requests[0]
	assert.True(t, req.JSON)
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, client.LastPrompt(), "Went to the lake with grandson Tommy")
	assert.Contains(t, client.LastPrompt(), "sleep (severity: low): Slept in")

	require.Len(t, st.Filters, 2)
	assert.Equal(t, testNow.Add(-7*24*time.Hour), st.Filters[0].Since)
	assert.Equal(t, "elder-1", st.Filters[0].SubjectID)
}

func TestInferMood_CachedWithinTTL(t *testing.T) {
	client := &MockLLM{Response: moodJSON}
	st := &mockStore{Memories: []model.Memory{memory("m1", "Tea with Rose")}}
	f := newFixture(client, st)

	first := f.a.InferMood(context.Background(), "elder-1")
	f.clock.Advance(4 * time.Minute)
	second := f.a.InferMood(context.Background(), "elder-1")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.Calls())

	f.clock.Advance(time.Minute)
	f.a.InferMood(context.Background(), "elder-1")
	assert.Equal(t, 2, client.Calls(), "expired entry triggers a new call")
}

func TestInferMood_SeparateSubjects(t *testing.T) {
	client := &MockLLM{Response: moodJSON}
	f := newFixture(client, &mockStore{Memories: []model.Memory{memory("m1", "Tea")}})

	f.a.InferMood(context.Background(), "elder-1")
	f.a.InferMood(context.Background(), "elder-2")

	assert.Equal(t, 2, client.Calls())
}

func TestInferMood_StoreErrorFallsBackUncached(t *testing.T) {
	client := &MockLLM{Response: moodJSON}
	st := &mockStore{Err: errors.New("connection refused")}
	f := newFixture(client, st)

	got := f.a.InferMood(context.Background(), "elder-1")
	assert.Equal(t, DefaultMood(), got)
	assert.Zero(t, client.Calls())

	st.Err = nil
	st.Memories = []model.Memory{memory("m1", "Tea")}
	got = f.a.InferMood(context.Background(), "elder-1")
	assert.Equal(t, "happy", got.Mood, "fallbacks are not cached")
}

func TestInferMood_NoActivity(t *testing.T) {
	client := &MockLLM{Response: moodJSON}
	f := newFixture(client, &mockStore{})

	assert.Equal(t, DefaultMood(), f.a.InferMood(context.Background(), "elder-1"))
	assert.Zero(t, client.Calls())
}

func TestInferMood_MalformedResponse(t *testing.T) {
	client := &MockLLM{Response: "I feel like they are doing fine."}
	f := newFixture(client, &mockStore{Memories: []model.Memory{memory("m1", "Tea")}})

	assert.Equal(t, DefaultMood(), f.a.InferMood(context.Background(), "elder-1"))
	assert.Equal(t, 1, client.Calls(), "parse failures are not retried")
}

func TestInferMood_RetriesTransientErrors(t *testing.T) {
	client := &MockLLM{
		Response: moodJSON,
		ErrQueue: []error{
			&llm.StatusError{Provider: "test", StatusCode: 429, Err: errors.New("rate limited")},
			&llm.StatusError{Provider: "test", StatusCode: 502, Err: errors.New("bad gateway")},
		},
	}
	f := newFixture(client, &mockStore{Memories: []model.Memory{memory("m1", "Tea")}})

	got := f.a.InferMood(context.Background(), "elder-1")

	assert.Equal(t, "happy", got.Mood)
	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.timer.waits)
}

func TestInferMood_PermanentErrorFallsBack(t *testing.T) {
	client := &MockLLM{Err: &llm.StatusError{Provider: "test", StatusCode: 401, Err: errors.New("bad key")}}
	f := newFixture(client, &mockStore{Memories: []model.Memory{memory("m1", "Tea")}})

	assert.Equal(t, DefaultMood(), f.a.InferMood(context.Background(), "elder-1"))
	assert.Equal(t, 1, client.Calls())
	assert.Empty(t, f.timer.waits)
}

func TestInferMood_ConcurrentMissesShareOneCall(t *testing.T) {
	client := &MockLLM{Response: moodJSON, Gate: make(chan struct{})}
	f := newFixture(client, &mockStore{Memories: []model.Memory{memory("m1", "Tea")}})

	results := make(chan model.MoodAnalysis, 5)
	for i := 0; i < 5; i++ {
		go func() { results <- f.a.InferMood(context.Background(), "elder-1") }()
	}
	close(client.Gate)

	for i := 0; i < 5; i++ {
		assert.Equal(t, "happy", (<-results).Mood)
	}
	assert.Equal(t, 1, client.Calls())
}

func TestNormalizeMood(t *testing.T) {
	got := normalizeMood(model.MoodAnalysis{SentimentScore: -3, Trend: "Sideways"})

	assert.Equal(t, "stable", got.Mood)
	assert.Equal(t, -1.0, got.SentimentScore)
	assert.Equal(t, model.TrendStable, got.Trend)
	assert.Equal(t, []string{}, got.Recommendations)
}

func TestInferMood_CancelledCallerDoesNotSpoilSharedCall(t *testing.T) {
	client := &MockLLM{Response: moodJSON, Gate: make(chan struct{}), Entered: make(chan struct{})}
	f := newFixture(client, &mockStore{Memories: []model.Memory{memory("m1", "Tea")}})

	first, cancel := context.WithCancel(context.Background())
	firstResult := make(chan model.MoodAnalysis, 1)
	go func() { firstResult <- f.a.InferMood(first, "elder-1") }()
	<-client.Entered

	secondResult := make(chan model.MoodAnalysis, 1)
	go func() { secondResult <- f.a.InferMood(context.Background(), "elder-1") }()

	cancel()
	close(client.Gate)

	assert.Equal(t, "happy", (<-secondResult).Mood)
	assert.Equal(t, "happy", (<-firstResult).Mood)
	assert.Equal(t, 1, client.Calls())
}
