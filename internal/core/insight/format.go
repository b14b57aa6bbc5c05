package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/carecircle/internal/core/model"
)

const (
	none       = "(none)"
	dateLayout = "2006-01-02"
)

func formatMemories(memories []model.Memory) string {
	if len(memories) == 0 {
		return none
	}
	var sb strings.Builder
	for _, m := range memories {
		fmt.Fprintf(&sb, "- [%s] (%s", m.CreatedAt.Format(dateLayout), m.Type)
		if m.EmotionalTone != "" {
			fmt.Fprintf(&sb, ", %s", m.EmotionalTone)
		}
		fmt.Fprintf(&sb, ") %s", m.RawText)
		if len(m.Tags) > 0 {
			fmt.Fprintf(&sb, " [tags: %s]", strings.Join(m.Tags, ", "))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSignals(signals []model.BehavioralSignal) string {
	if len(signals) == 0 {
		return none
	}
	var sb strings.Builder
	for _, s := range signals {
		fmt.Fprintf(&sb, "- [%s] %s (severity: %s): %s\n",
			s.DetectedAt.Format(dateLayout), s.SignalType, s.Severity, s.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMetrics(metrics []model.HealthMetric) string {
	if len(metrics) == 0 {
		return none
	}
	var sb strings.Builder
	for _, m := range metrics {
		fmt.Fprintf(&sb, "- [%s] %s: %g %s\n", m.RecordedAt.Format(dateLayout), m.MetricType, m.Value, m.Unit)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAlerts(alerts []model.HealthAlert) string {
	if len(alerts) == 0 {
		return none
	}
	var sb strings.Builder
	for _, a := range alerts {
		status := "open"
		if a.Resolved {
			status = "resolved"
		}
		fmt.Fprintf(&sb, "- [%s] %s (%s, %s): %s\n",
			a.CreatedAt.Format(dateLayout), a.AlertType, a.Severity, status, a.Message)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// journal lists memory texts oldest first, one per line.
func journal(memories []model.Memory) string {
	lines := make([]string, 0, len(memories))
	for i := len(memories) - 1; i >= 0; i-- {
		lines = append(lines, "- "+memories[i].RawText)
	}
	return strings.Join(lines, "\n")
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
