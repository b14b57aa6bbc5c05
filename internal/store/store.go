package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agenthands/carecircle/internal/config"
	"github.com/agenthands/carecircle/internal/core/model"
)

var (
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrNotFound       = errors.New("record not found")
)

const defaultLimit = 100

// Filter narrows a read to one subject and an optional time window.
// Zero Since/Until leave that side open; zero Limit means defaultLimit.
type Filter struct {
	SubjectID string
	Since     time.Time
	Until     time.Time
	Limit     int
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return defaultLimit
	}
	return f.Limit
}

type AlertFilter struct {
	Filter
	UnresolvedOnly bool
}

type Reader interface {
	ListMemories(ctx context.Context, f Filter) ([]model.Memory, error)
	ListSignals(ctx context.Context, f Filter) ([]model.BehavioralSignal, error)
	ListHealthMetrics(ctx context.Context, f Filter) ([]model.HealthMetric, error)
	ListHealthAlerts(ctx context.Context, f AlertFilter) ([]model.HealthAlert, error)
}

type Writer interface {
	SaveQuestion(ctx context.Context, subjectID, question string) (model.QuestionAnswer, error)
	AnswerQuestion(ctx context.Context, id, answer string) error
}

type ReadWriter interface {
	Reader
	Writer
}

type Store interface {
	ReadWriter
	Close(ctx context.Context) error
}

// Open connects to the backend named in cfg.
func Open(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "postgres":
		return NewPostgres(ctx, cfg.Postgres)
	case "memgraph":
		d, err := NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return nil, fmt.Errorf("connect to memgraph: %w", err)
		}
		s := NewMemgraph(d, logger)
		if err := s.BuildIndices(ctx); err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
