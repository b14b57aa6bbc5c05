package config

const defaultSystemPrompt = `You are a warm, patient companion helping older adults and their care team reflect on daily life. Keep language simple and kind. Never give a medical diagnosis.`

// Placeholders: %s recent memories, %s behavioral signals.
const defaultMoodPrompt = `Analyze the emotional state of an older adult from their recent memories and observed behavior.

Recent memories (last 7 days):
%s

Behavioral signals:
%s

Respond with a JSON object:
{
  "mood": "one word such as happy, calm, stable, anxious, sad, confused",
  "sentiment_score": number between -1 and 1,
  "explanation": "one or two sentences",
  "recommendations": ["short suggestion for caregivers"],
  "trend": "improving" | "stable" | "declining"
}`

// Placeholders: %s health metrics, %s health alerts.
const defaultHealthRiskPrompt = `Review the recent health data of an older adult and estimate near-term risks.

Health metrics:
%s

Alerts:
%s

Respond with a JSON object:
{
  "risk_score": integer from 0 to 100,
  "risks": [{"type": "falls|cognitive|cardiac|medication|other", "probability": number between 0 and 1, "description": "short text"}],
  "preventive_measures": ["short action for the care team"]
}`

// Placeholder: %s memory text.
const defaultFollowUpPrompt = `An older adult just shared this memory:
"%s"

Ask ONE short, gentle follow-up question (a single sentence) that invites them to share more detail. Reply with the question only.`

// Placeholders: %s memories joined.
const defaultDailySummaryPrompt = `Here is what an older adult shared today:
%s

Write a warm 2-3 sentence summary of their day, addressed to them ("you"). Reply with the summary only.`

// Placeholders: %s memories joined.
const defaultWeeklyRecapPrompt = `Here is what an older adult shared over the past week:
%s

Write a warm 2-3 sentence recap of their week for their family, highlighting people, events and feelings. Reply with the recap only.`

// Placeholders: %s memories, %s question.
const defaultAnswerPrompt = `You help an older adult recall things from their own memory journal.

Memories (most recent first):
%s

Question: %s

Answer in one or two friendly sentences using only the memories above. If the memories do not contain the answer, say so gently.`

func DefaultPrompts() PromptsConfig {
	return PromptsConfig{
		System:       defaultSystemPrompt,
		Mood:         defaultMoodPrompt,
		HealthRisk:   defaultHealthRiskPrompt,
		FollowUp:     defaultFollowUpPrompt,
		DailySummary: defaultDailySummaryPrompt,
		WeeklyRecap:  defaultWeeklyRecapPrompt,
		Answer:       defaultAnswerPrompt,
	}
}

// WithDefaults returns p with every empty template replaced by its built-in default.
func (p PromptsConfig) WithDefaults() PromptsConfig {
	d := DefaultPrompts()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.System, d.System)
	fill(&p.Mood, d.Mood)
	fill(&p.HealthRisk, d.HealthRisk)
	fill(&p.FollowUp, d.FollowUp)
	fill(&p.DailySummary, d.DailySummary)
	fill(&p.WeeklyRecap, d.WeeklyRecap)
	fill(&p.Answer, d.Answer)
	return p
}
