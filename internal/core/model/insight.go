package model

const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

type MoodAnalysis struct {
	Mood            string   `json:"mood"`
	SentimentScore  float64  `json:"sentiment_score"`
	Explanation     string   `json:"explanation"`
	Recommendations []string `json:"recommendations"`
	Trend           string   `json:"trend"`
}

type HealthRisk struct {
	Type        string  `json:"type"`
	Probability float64 `json:"probability"`
	Description string  `json:"description"`
}

type HealthRiskAssessment struct {
	RiskScore          int          `json:"risk_score"`
	Risks              []HealthRisk `json:"risks"`
	PreventiveMeasures []string     `json:"preventive_measures"`
}

// Answer is the result of a free-form question about the memory journal.
// Sources holds the best keyword matches regardless of how the text was produced.
type Answer struct {
	Answer   string   `json:"answer"`
	Sources  []Memory `json:"sources"`
	Grounded bool     `json:"grounded"`
}
