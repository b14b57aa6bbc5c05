package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agenthands/carecircle/internal/core/common"
	"github.com/agenthands/carecircle/internal/store"
)

const (
	day              = 24 * time.Hour
	recapMemoryLimit = 100
)

func dailySummaryKey(subjectID string, d time.Time) string {
	return fmt.Sprintf("daily_summary:%s:%s", subjectID, startOfDay(d).Format(dateLayout))
}

func weeklyRecapKey(subjectID string, weekEnding time.Time) string {
	return fmt.Sprintf("weekly_recap:%s:%s", subjectID, startOfDay(weekEnding).Format(dateLayout))
}

type recapKind struct {
	feature   string
	template  string
	maxTokens int
	fallback  func(count int) string
}

// DailySummary narrates the memories recorded on the UTC calendar day of d.
func (a *Assistant) DailySummary(ctx context.Context, subjectID string, d time.Time) string {
	from := startOfDay(d)
	return a.recap(ctx, subjectID, dailySummaryKey(subjectID, d), from, from.Add(day), recapKind{
		feature:   "daily_summary",
		template:  a.prompts.DailySummary,
		maxTokens: 200,
		fallback:  dailyFallback,
	})
}

// WeeklyRecap narrates the seven days ending with weekEnding (inclusive).
func (a *Assistant) WeeklyRecap(ctx context.Context, subjectID string, weekEnding time.Time) string {
	until := startOfDay(weekEnding).Add(day)
	return a.recap(ctx, subjectID, weeklyRecapKey(subjectID, weekEnding), until.Add(-7*day), until, recapKind{
		feature:   "weekly_recap",
		template:  a.prompts.WeeklyRecap,
		maxTokens: 250,
		fallback:  weeklyFallback,
	})
}

func (a *Assistant) recap(ctx context.Context, subjectID, key string, from, until time.Time, kind recapKind) string {
	return remember(ctx, a, key, func(ctx context.Context) (string, bool) {
		memories, err := a.store.ListMemories(ctx, store.Filter{
			SubjectID: subjectID,
			Since:     from,
			Until:     until,
			Limit:     recapMemoryLimit,
		})
		if err != nil {
			a.degrade(kind.feature, subjectID, fmt.Errorf("load memories: %w", err))
			return FallbackRecap, false
		}
		if len(memories) == 0 || !a.Enabled() {
			return kind.fallback(len(memories)), false
		}

		raw, err := a.complete(ctx, completion{
			prompt:      fmt.Sprintf(kind.template, journal(memories)),
			temperature: a.narrativeTemperature(),
			maxTokens:   a.tokens(kind.maxTokens),
		})
		if err == nil {
			if text := common.CleanText(raw); text != "" {
				return text, true
			}
			err = errors.New("empty summary")
		}
		a.degrade(kind.feature, subjectID, err)
		return kind.fallback(len(memories)), false
	})
}
