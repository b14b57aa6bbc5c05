package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/carecircle/internal/core/common"
	"github.com/agenthands/carecircle/internal/core/model"
)

func followUpKey(memory model.Memory) string {
	if memory.ID != "" {
		return "follow_up:" + memory.ID
	}
	sum := sha256.Sum256([]byte(strings.TrimSpace(memory.RawText)))
	return "follow_up:text:" + hex.EncodeToString(sum[:8])
}

// FollowUpQuestion asks one gentle question that invites more detail about
// a memory the subject just shared.
func (a *Assistant) FollowUpQuestion(ctx context.Context, memory model.Memory) string {
	if !a.Enabled() || strings.TrimSpace(memory.RawText) == "" {
		return FallbackFollowUp
	}
	return remember(ctx, a, followUpKey(memory), func(ctx context.Context) (string, bool) {
		q, err := a.followUp(ctx, memory)
		if err != nil {
			a.degrade("follow_up", memory.SubjectID, err)
			return FallbackFollowUp, false
		}
		return q, true
	})
}

func (a *Assistant) followUp(ctx context.Context, memory model.Memory) (string, error) {
	raw, err := a.complete(ctx, completion{
		prompt:      fmt.Sprintf(a.prompts.FollowUp, strings.TrimSpace(memory.RawText)),
		temperature: a.narrativeTemperature(),
		maxTokens:   a.tokens(60),
	})
	if err != nil {
		return "", fmt.Errorf("generate follow-up: %w", err)
	}

	q := common.CleanText(common.FirstLine(common.CleanText(raw)))
	if q == "" {
		return "", errors.New("empty follow-up question")
	}
	return q, nil
}
