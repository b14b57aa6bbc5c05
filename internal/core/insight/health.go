package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/carecircle/internal/core/common"
	"github.com/agenthands/carecircle/internal/core/model"
	"github.com/agenthands/carecircle/internal/store"
)

const (
	healthWindow      = 30 * 24 * time.Hour
	healthMetricLimit = 50
	healthAlertLimit  = 20
)

func healthRiskKey(subjectID string) string {
	return "health_risk:" + subjectID
}

// AssessHealthRisk scores near-term health risks from recent metrics and
// open alerts.
func (a *Assistant) AssessHealthRisk(ctx context.Context, subjectID string) model.HealthRiskAssessment {
	if !a.Enabled() {
		return DefaultHealthRisk()
	}
	return remember(ctx, a, healthRiskKey(subjectID), func(ctx context.Context) (model.HealthRiskAssessment, bool) {
		h, err := a.assessHealthRisk(ctx, subjectID)
		if err != nil {
			a.degrade("health_risk", subjectID, err)
			return DefaultHealthRisk(), false
		}
		return h, true
	})
}

func (a *Assistant) assessHealthRisk(ctx context.Context, subjectID string) (model.HealthRiskAssessment, error) {
	metrics, err := a.store.ListHealthMetrics(ctx, store.Filter{
		SubjectID: subjectID,
		Since:     a.clock.Now().Add(-healthWindow),
		Limit:     healthMetricLimit,
	})
	if err != nil {
		return model.HealthRiskAssessment{}, fmt.Errorf("load health metrics: %w", err)
	}

	alerts, err := a.store.ListHealthAlerts(ctx, store.AlertFilter{
		Filter:         store.Filter{SubjectID: subjectID, Limit: healthAlertLimit},
		UnresolvedOnly: true,
	})
	if err != nil {
		return model.HealthRiskAssessment{}, fmt.Errorf("load health alerts: %w", err)
	}

	raw, err := a.complete(ctx, completion{
		prompt:      fmt.Sprintf(a.prompts.HealthRisk, formatMetrics(metrics), formatAlerts(alerts)),
		temperature: analyticTemperature,
		maxTokens:   a.tokens(600),
		json:        true,
	})
	if err != nil {
		return model.HealthRiskAssessment{}, fmt.Errorf("generate health assessment: %w", err)
	}

	parsed, err := common.ParseJSON[healthRiskReply](raw)
	if err != nil {
		return model.HealthRiskAssessment{}, fmt.Errorf("parse health assessment: %w", err)
	}
	return normalizeHealthRisk(parsed), nil
}
