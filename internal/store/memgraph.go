package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/carecircle/internal/core/model"
)

// GraphDriver is the slice of the neo4j driver the Memgraph store uses.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	return &MemgraphDriver{Driver: driver}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// Memgraph keeps the memory log as labelled nodes keyed by elder_id.
type Memgraph struct {
	driver GraphDriver
	logger *log.Logger
	now    func() time.Time
}

func NewMemgraph(driver GraphDriver, logger *log.Logger) *Memgraph {
	if logger == nil {
		logger = log.Default()
	}
	return &Memgraph{driver: driver, logger: logger, now: time.Now}
}

func (m *Memgraph) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

func (m *Memgraph) BuildIndices(ctx context.Context) error {
	for _, q := range indexQueries {
		if _, err := m.driver.ExecuteQuery(ctx, q, nil); err != nil {
			// Memgraph errors when the index already exists.
			m.logger.Warn("failed to create index", "query", q, "err", err)
		}
	}
	return nil
}

func windowParams(f Filter) map[string]any {
	params := map[string]any{
		"elder_id": f.SubjectID,
		"since":    nil,
		"until":    nil,
		"limit":    int64(f.limit()),
	}
	if !f.Since.IsZero() {
		params["since"] = f.Since
	}
	if !f.Until.IsZero() {
		params["until"] = f.Until
	}
	return params
}

func (m *Memgraph) ListMemories(ctx context.Context, f Filter) ([]model.Memory, error) {
	res, err := m.driver.ExecuteQuery(ctx, ListMemoriesQuery, windowParams(f))
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	out := make([]model.Memory, 0, len(res.Records))
	for _, r := range res.Records {
		mem := model.Memory{
			ID:            recordString(r, "id"),
			SubjectID:     recordString(r, "elder_id"),
			RawText:       recordString(r, "raw_text"),
			Type:          model.MemoryType(recordString(r, "type")).Normalize(),
			EmotionalTone: recordString(r, "emotional_tone"),
			Tags:          recordStrings(r, "tags"),
			ImageURL:      recordString(r, "image_url"),
			CreatedAt:     recordTime(r, "created_at"),
			UpdatedAt:     recordTime(r, "updated_at"),
		}
		if mem.UpdatedAt.IsZero() {
			mem.UpdatedAt = mem.CreatedAt
		}
		out = append(out, mem)
	}
	return out, nil
}

func (m *Memgraph) ListSignals(ctx context.Context, f Filter) ([]model.BehavioralSignal, error) {
	res, err := m.driver.ExecuteQuery(ctx, ListSignalsQuery, windowParams(f))
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	out := make([]model.BehavioralSignal, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, model.BehavioralSignal{
			ID:          recordString(r, "id"),
			SubjectID:   recordString(r, "elder_id"),
			SignalType:  recordString(r, "signal_type"),
			Severity:    recordString(r, "severity"),
			Description: recordString(r, "description"),
			DetectedAt:  recordTime(r, "detected_at"),
		})
	}
	return out, nil
}

func (m *Memgraph) ListHealthMetrics(ctx context.Context, f Filter) ([]model.HealthMetric, error) {
	res, err := m.driver.ExecuteQuery(ctx, ListHealthMetricsQuery, windowParams(f))
	if err != nil {
		return nil, fmt.Errorf("list health metrics: %w", err)
	}
	out := make([]model.HealthMetric, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, model.HealthMetric{
			ID:         recordString(r, "id"),
			SubjectID:  recordString(r, "elder_id"),
			MetricType: recordString(r, "metric_type"),
			Value:      recordFloat(r, "value"),
			Unit:       recordString(r, "unit"),
			RecordedAt: recordTime(r, "recorded_at"),
		})
	}
	return out, nil
}

func (m *Memgraph) ListHealthAlerts(ctx context.Context, f AlertFilter) ([]model.HealthAlert, error) {
	params := windowParams(f.Filter)
	params["unresolved_only"] = f.UnresolvedOnly

	res, err := m.driver.ExecuteQuery(ctx, ListHealthAlertsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("list health alerts: %w", err)
	}
	out := make([]model.HealthAlert, 0, len(res.Records))
	for _, r := range res.Records {
		resolved, _ := recordValue(r, "resolved").(bool)
		out = append(out, model.HealthAlert{
			ID:        recordString(r, "id"),
			SubjectID: recordString(r, "elder_id"),
			AlertType: recordString(r, "alert_type"),
			Severity:  recordString(r, "severity"),
			Message:   recordString(r, "message"),
			Resolved:  resolved,
			CreatedAt: recordTime(r, "created_at"),
		})
	}
	return out, nil
}

func (m *Memgraph) SaveQuestion(ctx context.Context, subjectID, question string) (model.QuestionAnswer, error) {
	qa := model.QuestionAnswer{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Question:  question,
		CreatedAt: m.now().UTC(),
	}
	_, err := m.driver.ExecuteQuery(ctx, SaveQuestionQuery, map[string]any{
		"id":         qa.ID,
		"elder_id":   qa.SubjectID,
		"question":   qa.Question,
		"created_at": qa.CreatedAt,
	})
	if err != nil {
		return model.QuestionAnswer{}, fmt.Errorf("save question: %w", err)
	}
	return qa, nil
}

func (m *Memgraph) AnswerQuestion(ctx context.Context, id, answer string) error {
	res, err := m.driver.ExecuteQuery(ctx, AnswerQuestionQuery, map[string]any{
		"id":          id,
		"answer":      answer,
		"answered_at": m.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}

func recordValue(r *neo4j.Record, key string) any {
	v, ok := r.Get(key)
	if !ok {
		return nil
	}
	return v
}

func recordString(r *neo4j.Record, key string) string {
	s, _ := recordValue(r, key).(string)
	return s
}

func recordFloat(r *neo4j.Record, key string) float64 {
	switch v := recordValue(r, key).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func recordTime(r *neo4j.Record, key string) time.Time {
	switch v := recordValue(r, key).(type) {
	case time.Time:
		return v
	case neo4j.LocalDateTime:
		return v.Time()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

func recordStrings(r *neo4j.Record, key string) []string {
	out := []string{}
	switch v := recordValue(r, key).(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	}
	return out
}
