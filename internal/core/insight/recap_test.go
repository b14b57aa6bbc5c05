package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/carecircle/internal/core/model"
)

func TestDailySummary(t *testing.T) {
	client := &MockLLM{Response: "```\nYou had a cozy day baking with Rose.\n```"}
	st := &mockStore{Memories: []model.Memory{
		memory("m2", "Rose came over for tea"),
		memory("m1", "Baked banana bread"),
	}}
	f := newFixture(client, st)

	day := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)
	got := f.a.DailySummary(context.Background(), "elder-1", day)

	assert.Equal(t, "You had a cozy day baking with Rose.", got)
	require.Len(t, st.Filters, 1)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), st.Filters[0].Since)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), st.Filters[0].Until)
	assert.Contains(t, client.LastPrompt(), "- Baked banana bread\n- Rose came over for tea", "journal is oldest first")

	// Any time on the same day hits the same cache entry.
	f.a.DailySummary(context.Background(), "elder-1", day.Add(-20*time.Hour))
	assert.Equal(t, 1, client.Calls())
}

func TestDailySummary_Fallbacks(t *testing.T) {
	day := testNow

	t.Run("no memories", func(t *testing.T) {
		client := &MockLLM{Response: "unused"}
		f := newFixture(client, &mockStore{})
		assert.Equal(t, "No memories were recorded on this day.", f.a.DailySummary(context.Background(), "elder-1", day))
		assert.Zero(t, client.Calls())
	})

	t.Run("no key", func(t *testing.T) {
		f := newFixture(nil, &mockStore{Memories: []model.Memory{memory("m1", "Walked")}})
		assert.Equal(t, "You shared 1 memory today.", f.a.DailySummary(context.Background(), "elder-1", day))
	})

	t.Run("llm error", func(t *testing.T) {
		f := newFixture(&MockLLM{Err: errors.New("down")}, &mockStore{Memories: []model.Memory{
			memory("m1", "Walked"), memory("m2", "Read"),
		}})
		assert.Equal(t, "You shared 2 memories today.", f.a.DailySummary(context.Background(), "elder-1", day))
	})

	t.Run("store error", func(t *testing.T) {
		client := &MockLLM{Response: "unused"}
		f := newFixture(client, &mockStore{Err: errors.New("down")})
		assert.Equal(t, FallbackRecap, f.a.DailySummary(context.Background(), "elder-1", day))
		assert.Zero(t, client.Calls())
	})
}

func TestWeeklyRecap(t *testing.T) {
	client := &MockLLM{Response: "A week full of family visits."}
	st := &mockStore{Memories: []model.Memory{memory("m1", "Sunday lunch with the kids")}}
	f := newFixture(client, st)

	ending := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	got := f.a.WeeklyRecap(context.Background(), "elder-1", ending)

	assert.Equal(t, "A week full of family visits.", got)
	require.Len(t, st.Filters, 1)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), st.Filters[0].Since)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), st.Filters[0].Until)
	assert.Equal(t, recapMemoryLimit, st.Filters[0].Limit)
}

func TestWeeklyRecap_Fallback(t *testing.T) {
	f := newFixture(nil, &mockStore{Memories: []model.Memory{memory("m1", "Walked"), memory("m2", "Read")}})
	assert.Equal(t, "This week you recorded 2 memories.", f.a.WeeklyRecap(context.Background(), "elder-1", testNow))

	f = newFixture(&MockLLM{Response: "unused"}, &mockStore{})
	assert.Equal(t, "This week you recorded 0 memories.", f.a.WeeklyRecap(context.Background(), "elder-1", testNow))
	assert.Zero(t, f.llm.Calls())

	f = newFixture(&MockLLM{Response: "unused"}, &mockStore{Err: errors.New("down")})
	assert.Equal(t, FallbackRecap, f.a.WeeklyRecap(context.Background(), "elder-1", testNow))
	assert.Zero(t, f.llm.Calls())
}

func TestRecapKeysDiffer(t *testing.T) {
	assert.Equal(t, "daily_summary:elder-1:2026-10-17", dailySummaryKey("elder-1", testNow))
	assert.Equal(t, "weekly_recap:elder-1:2026-10-17", weeklyRecapKey("elder-1", testNow))
}
