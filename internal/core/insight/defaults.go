package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/agenthands/carecircle/internal/core/model"
)

const (
	FallbackExplanation = "Analysis unavailable"
	FallbackFollowUp    = "That sounds lovely! Can you tell me more about it?"
	FallbackNoAnswer    = "I'm sorry, I couldn't find anything about that in your memories yet."
	FallbackPreventive  = "Continue regular check-ins with the care team"
	FallbackRecap       = "Your recap isn't available right now. Please check back a little later."

	fallbackAnswerPrefix = "Here's what I found in your memories: "
)

func DefaultMood() model.MoodAnalysis {
	return model.MoodAnalysis{
		Mood:            "stable",
		SentimentScore:  0,
		Explanation:     FallbackExplanation,
		Recommendations: []string{},
		Trend:           model.TrendStable,
	}
}

func DefaultHealthRisk() model.HealthRiskAssessment {
	return model.HealthRiskAssessment{
		RiskScore:          0,
		Risks:              []model.HealthRisk{},
		PreventiveMeasures: []string{FallbackPreventive},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func dailyFallback(count int) string {
	if count == 0 {
		return "No memories were recorded on this day."
	}
	return fmt.Sprintf("You shared %d %s today.", count, plural(count, "memory", "memories"))
}

func weeklyFallback(count int) string {
	return fmt.Sprintf("This week you recorded %d %s.", count, plural(count, "memory", "memories"))
}

func fallbackAnswer(sources []model.Memory) model.Answer {
	if len(sources) == 0 {
		return model.Answer{Answer: FallbackNoAnswer, Sources: []model.Memory{}}
	}
	return model.Answer{
		Answer:  fallbackAnswerPrefix + sources[0].RawText,
		Sources: sources,
	}
}

func clamp(v, low, high float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(low, math.Min(high, v))
}

func nonBlank(items []string) []string {
	return lo.FilterMap(items, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}

func normalizeMood(m model.MoodAnalysis) model.MoodAnalysis {
	m.Mood = strings.ToLower(strings.TrimSpace(m.Mood))
	if m.Mood == "" {
		m.Mood = "stable"
	}
	m.SentimentScore = clamp(m.SentimentScore, -1, 1)
	m.Explanation = strings.TrimSpace(m.Explanation)
	m.Recommendations = nonBlank(m.Recommendations)

	switch t := strings.ToLower(strings.TrimSpace(m.Trend)); t {
	case model.TrendImproving, model.TrendStable, model.TrendDeclining:
		m.Trend = t
	default:
		m.Trend = model.TrendStable
	}
	return m
}

// healthRiskReply is the completion shape; models often send a fractional score.
type healthRiskReply struct {
	RiskScore          float64            `json:"risk_score"`
	Risks              []model.HealthRisk `json:"risks"`
	PreventiveMeasures []string           `json:"preventive_measures"`
}

func normalizeHealthRisk(r healthRiskReply) model.HealthRiskAssessment {
	h := model.HealthRiskAssessment{
		RiskScore:          int(math.Round(clamp(r.RiskScore, 0, 100))),
		Risks:              r.Risks,
		PreventiveMeasures: r.PreventiveMeasures,
	}
	h.Risks = lo.FilterMap(h.Risks, func(risk model.HealthRisk, _ int) (model.HealthRisk, bool) {
		risk.Type = strings.TrimSpace(risk.Type)
		risk.Probability = clamp(risk.Probability, 0, 1)
		risk.Description = strings.TrimSpace(risk.Description)
		return risk, risk.Type != ""
	})
	h.PreventiveMeasures = nonBlank(h.PreventiveMeasures)
	return h
}
