package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/carecircle/internal/core/common"
	"github.com/agenthands/carecircle/internal/core/model"
	"github.com/agenthands/carecircle/internal/core/recall"
	"github.com/agenthands/carecircle/internal/store"
)

const (
	askMemoryLimit    = 50
	askPromptMemories = 15
	askSourceCount    = 3
)

func askKey(subjectID, question string) string {
	return fmt.Sprintf("ask:%s:%s", subjectID, strings.Join(strings.Fields(strings.ToLower(question)), " "))
}

// Ask answers a free-form question from the subject's memory journal. The
// best keyword matches are always returned as sources; when no completion is
// available the top match stands in for the answer.
func (a *Assistant) Ask(ctx context.Context, subjectID, question string) model.Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return fallbackAnswer(nil)
	}

	ans := remember(ctx, a, askKey(subjectID, question), func(ctx context.Context) (model.Answer, bool) {
		return a.answer(ctx, subjectID, question)
	})
	a.recordQuestion(ctx, subjectID, question, ans.Answer)
	return ans
}

func (a *Assistant) answer(ctx context.Context, subjectID, question string) (model.Answer, bool) {
	memories, err := a.store.ListMemories(ctx, store.Filter{SubjectID: subjectID, Limit: askMemoryLimit})
	if err != nil {
		a.degrade("ask", subjectID, fmt.Errorf("load memories: %w", err))
		return fallbackAnswer(nil), false
	}

	sources := recall.TopMatches(question, memories, askSourceCount)

	if !a.Enabled() {
		return fallbackAnswer(sources), false
	}

	recent := memories
	if len(recent) > askPromptMemories {
		recent = recent[:askPromptMemories]
	}

	raw, err := a.complete(ctx, completion{
		prompt:      fmt.Sprintf(a.prompts.Answer, formatMemories(recent), question),
		temperature: a.narrativeTemperature(),
		maxTokens:   a.tokens(200),
	})
	if err == nil {
		if text := common.CleanText(raw); text != "" {
			return model.Answer{Answer: text, Sources: sources, Grounded: true}, true
		}
		err = errors.New("empty answer")
	}
	a.degrade("ask", subjectID, err)
	return fallbackAnswer(sources), false
}

// recordQuestion logs the exchange in the questions table; failures are not
// the caller's problem.
func (a *Assistant) recordQuestion(ctx context.Context, subjectID, question, answer string) {
	qa, err := a.store.SaveQuestion(ctx, subjectID, question)
	if err != nil {
		a.logger.Warn("failed to record question", "subject", subjectID, "err", err)
		return
	}
	if err := a.store.AnswerQuestion(ctx, qa.ID, answer); err != nil {
		a.logger.Warn("failed to record answer", "subject", subjectID, "question_id", qa.ID, "err", err)
	}
}
