package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agenthands/carecircle/internal/core/common"
	"github.com/agenthands/carecircle/internal/core/model"
	"github.com/agenthands/carecircle/internal/store"
)

const (
	moodWindow      = 7 * 24 * time.Hour
	moodMemoryLimit = 50
	moodSignalLimit = 30
)

var errNoActivity = errors.New("no recent activity")

func moodKey(subjectID string) string {
	return "mood:" + subjectID
}

// InferMood estimates the subject's mood over the last week from their
// memories and behavioral signals.
func (a *Assistant) InferMood(ctx context.Context, subjectID string) model.MoodAnalysis {
	if !a.Enabled() {
		return DefaultMood()
	}
	return remember(ctx, a, moodKey(subjectID), func(ctx context.Context) (model.MoodAnalysis, bool) {
		m, err := a.inferMood(ctx, subjectID)
		if err != nil {
			a.degrade("mood", subjectID, err)
			return DefaultMood(), false
		}
		return m, true
	})
}

func (a *Assistant) inferMood(ctx context.Context, subjectID string) (model.MoodAnalysis, error) {
	window := store.Filter{SubjectID: subjectID, Since: a.clock.Now().Add(-moodWindow)}

	window.Limit = moodMemoryLimit
	memories, err := a.store.ListMemories(ctx, window)
	if err != nil {
		return model.MoodAnalysis{}, fmt.Errorf("load memories: %w", err)
	}

	window.Limit = moodSignalLimit
	signals, err := a.store.ListSignals(ctx, window)
	if err != nil {
		return model.MoodAnalysis{}, fmt.Errorf("load signals: %w", err)
	}

	if len(memories) == 0 && len(signals) == 0 {
		return model.MoodAnalysis{}, errNoActivity
	}

	raw, err := a.complete(ctx, completion{
		prompt:      fmt.Sprintf(a.prompts.Mood, formatMemories(memories), formatSignals(signals)),
		temperature: analyticTemperature,
		maxTokens:   a.tokens(500),
		json:        true,
	})
	if err != nil {
		return model.MoodAnalysis{}, fmt.Errorf("generate mood analysis: %w", err)
	}

	parsed, err := common.ParseJSON[model.MoodAnalysis](raw)
	if err != nil {
		return model.MoodAnalysis{}, fmt.Errorf("parse mood analysis: %w", err)
	}
	return normalizeMood(parsed), nil
}
