package model

import "time"

type BehavioralSignal struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"elder_id"`
	SignalType  string    `json:"signal_type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	DetectedAt  time.Time `json:"detected_at"`
}

type HealthMetric struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"elder_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type HealthAlert struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"elder_id"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}
