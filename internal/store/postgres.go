package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agenthands/carecircle/internal/config"
	"github.com/agenthands/carecircle/internal/core/model"
)

const (
	tableMemories  = "memories"
	tableSignals   = "behavioral_signals"
	tableMetrics   = "health_metrics"
	tableAlerts    = "health_alerts"
	tableQuestions = "questions"

	colSubject = "elder_id"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Postgres struct {
	pool *pgxpool.Pool
	q    querier
	now  func() time.Time
}

// NewPostgres opens a pool and pings it so a bad DSN fails at startup.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{pool: pool, q: pool, now: time.Now}, nil
}

func (p *Postgres) Close(context.Context) error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func window(q squirrel.SelectBuilder, f Filter, timeCol string) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{colSubject: f.SubjectID})
	if !f.Since.IsZero() {
		q = q.Where(squirrel.GtOrEq{timeCol: f.Since})
	}
	if !f.Until.IsZero() {
		q = q.Where(squirrel.Lt{timeCol: f.Until})
	}
	return q.OrderBy(timeCol + " DESC").Limit(uint64(f.limit()))
}

func memoriesQuery(f Filter) squirrel.SelectBuilder {
	return window(psql.Select(
		"id::text AS id", "elder_id::text AS elder_id", "raw_text", "type", "emotional_tone",
		"tags", "image_url", "created_at", "updated_at",
	).From(tableMemories), f, "created_at")
}

func signalsQuery(f Filter) squirrel.SelectBuilder {
	return window(psql.Select(
		"id::text AS id", "elder_id::text AS elder_id", "signal_type", "severity", "description", "detected_at",
	).From(tableSignals), f, "detected_at")
}

func metricsQuery(f Filter) squirrel.SelectBuilder {
	return window(psql.Select(
		"id::text AS id", "elder_id::text AS elder_id", "metric_type", "value", "unit", "recorded_at",
	).From(tableMetrics), f, "recorded_at")
}

func alertsQuery(f AlertFilter) squirrel.SelectBuilder {
	q := psql.Select(
		"id::text AS id", "elder_id::text AS elder_id", "alert_type", "severity", "message", "resolved", "created_at",
	).From(tableAlerts)
	if f.UnresolvedOnly {
		q = q.Where(squirrel.Eq{"resolved": false})
	}
	return window(q, f.Filter, "created_at")
}

type memoryRow struct {
	ID            string     `db:"id"`
	ElderID       string     `db:"elder_id"`
	RawText       string     `db:"raw_text"`
	Type          *string    `db:"type"`
	EmotionalTone *string    `db:"emotional_tone"`
	Tags          []string   `db:"tags"`
	ImageURL      *string    `db:"image_url"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
}

func (r memoryRow) toModel() model.Memory {
	m := model.Memory{
		ID:            r.ID,
		SubjectID:     r.ElderID,
		RawText:       r.RawText,
		Type:          model.MemoryType(deref(r.Type)).Normalize(),
		EmotionalTone: deref(r.EmotionalTone),
		Tags:          r.Tags,
		ImageURL:      deref(r.ImageURL),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.CreatedAt,
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if r.UpdatedAt != nil {
		m.UpdatedAt = *r.UpdatedAt
	}
	return m
}

type signalRow struct {
	ID          string    `db:"id"`
	ElderID     string    `db:"elder_id"`
	SignalType  string    `db:"signal_type"`
	Severity    *string   `db:"severity"`
	Description *string   `db:"description"`
	DetectedAt  time.Time `db:"detected_at"`
}

type metricRow struct {
	ID         string    `db:"id"`
	ElderID    string    `db:"elder_id"`
	MetricType string    `db:"metric_type"`
	Value      float64   `db:"value"`
	Unit       *string   `db:"unit"`
	RecordedAt time.Time `db:"recorded_at"`
}

type alertRow struct {
	ID        string    `db:"id"`
	ElderID   string    `db:"elder_id"`
	AlertType string    `db:"alert_type"`
	Severity  *string   `db:"severity"`
	Message   *string   `db:"message"`
	Resolved  bool      `db:"resolved"`
	CreatedAt time.Time `db:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func selectRows[R any](ctx context.Context, q querier, b squirrel.SelectBuilder, table string) ([]R, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", table, err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[R])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return out, nil
}

func (p *Postgres) ListMemories(ctx context.Context, f Filter) ([]model.Memory, error) {
	rows, err := selectRows[memoryRow](ctx, p.q, memoriesQuery(f), tableMemories)
	if err != nil {
		return nil, err
	}
	out := make([]model.Memory, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (p *Postgres) ListSignals(ctx context.Context, f Filter) ([]model.BehavioralSignal, error) {
	rows, err := selectRows[signalRow](ctx, p.q, signalsQuery(f), tableSignals)
	if err != nil {
		return nil, err
	}
	out := make([]model.BehavioralSignal, len(rows))
	for i, r := range rows {
		out[i] = model.BehavioralSignal{
			ID:          r.ID,
			SubjectID:   r.ElderID,
			SignalType:  r.SignalType,
			Severity:    deref(r.Severity),
			Description: deref(r.Description),
			DetectedAt:  r.DetectedAt,
		}
	}
	return out, nil
}

func (p *Postgres) ListHealthMetrics(ctx context.Context, f Filter) ([]model.HealthMetric, error) {
	rows, err := selectRows[metricRow](ctx, p.q, metricsQuery(f), tableMetrics)
	if err != nil {
		return nil, err
	}
	out := make([]model.HealthMetric, len(rows))
	for i, r := range rows {
		out[i] = model.HealthMetric{
			ID:         r.ID,
			SubjectID:  r.ElderID,
			MetricType: r.MetricType,
			Value:      r.Value,
			Unit:       deref(r.Unit),
			RecordedAt: r.RecordedAt,
		}
	}
	return out, nil
}

func (p *Postgres) ListHealthAlerts(ctx context.Context, f AlertFilter) ([]model.HealthAlert, error) {
	rows, err := selectRows[alertRow](ctx, p.q, alertsQuery(f), tableAlerts)
	if err != nil {
		return nil, err
	}
	out := make([]model.HealthAlert, len(rows))
	for i, r := range rows {
		out[i] = model.HealthAlert{
			ID:        r.ID,
			SubjectID: r.ElderID,
			AlertType: r.AlertType,
			Severity:  deref(r.Severity),
			Message:   deref(r.Message),
			Resolved:  r.Resolved,
			CreatedAt: r.CreatedAt,
		}
	}
	return out, nil
}

func insertQuestion(qa model.QuestionAnswer) squirrel.InsertBuilder {
	return psql.Insert(tableQuestions).
		Columns("id", colSubject, "question", "created_at").
		Values(qa.ID, qa.SubjectID, qa.Question, qa.CreatedAt)
}

func answerQuestion(id, answer string, at time.Time) squirrel.UpdateBuilder {
	return psql.Update(tableQuestions).
		Set("answer", answer).
		Set("answered_at", at).
		Where(squirrel.Eq{"id": id})
}

func (p *Postgres) SaveQuestion(ctx context.Context, subjectID, question string) (model.QuestionAnswer, error) {
	qa := model.QuestionAnswer{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Question:  question,
		CreatedAt: p.now().UTC(),
	}

	sql, args, err := insertQuestion(qa).ToSql()
	if err != nil {
		return model.QuestionAnswer{}, fmt.Errorf("build %s insert: %w", tableQuestions, err)
	}
	if _, err := p.q.Exec(ctx, sql, args...); err != nil {
		return model.QuestionAnswer{}, fmt.Errorf("insert %s: %w", tableQuestions, err)
	}
	return qa, nil
}

func (p *Postgres) AnswerQuestion(ctx context.Context, id, answer string) error {
	sql, args, err := answerQuestion(id, answer, p.now().UTC()).ToSql()
	if err != nil {
		return fmt.Errorf("build %s update: %w", tableQuestions, err)
	}
	tag, err := p.q.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("update %s: %s: %w", tableQuestions, pgErr.Code, err)
		}
		return fmt.Errorf("update %s: %w", tableQuestions, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}
