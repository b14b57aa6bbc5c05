// Package insight builds the assistant's AI answers: mood inference, health
// risk, follow-up questions, recaps and journal Q&A.
//
// Every builder returns a usable value. Missing API keys, store errors,
// remote failures and malformed completions all end in the feature's
// fallback default; fallbacks are never cached.
package insight

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/agenthands/carecircle/internal/config"
	"github.com/agenthands/carecircle/internal/core/cache"
	"github.com/agenthands/carecircle/internal/core/retry"
	"github.com/agenthands/carecircle/internal/llm"
	"github.com/agenthands/carecircle/internal/store"
)

const analyticTemperature = 0.3

type Config struct {
	// LLM may be nil, which disables all completions.
	LLM     llm.LLMClient
	Store   store.ReadWriter
	Cache   cache.Store
	Retry   retry.Policy
	Prompts config.PromptsConfig

	Model       string
	Temperature float32
	MaxTokens   int
	// Timeout bounds each completion attempt. Zero means no extra deadline.
	Timeout time.Duration

	Clock  clockwork.Clock
	Logger *log.Logger
}

type Assistant struct {
	llm     llm.LLMClient
	store   store.ReadWriter
	cache   cache.Store
	retry   retry.Policy
	prompts config.PromptsConfig

	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration

	clock  clockwork.Clock
	logger *log.Logger
	group  singleflight.Group
}

func New(cfg Config) *Assistant {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(cache.DefaultTTL, cache.DefaultCapacity, cfg.Clock)
	}
	if cfg.Retry.Logger == nil {
		cfg.Retry.Logger = cfg.Logger
	}

	return &Assistant{
		llm:         cfg.LLM,
		store:       cfg.Store,
		cache:       cfg.Cache,
		retry:       cfg.Retry,
		prompts:     cfg.Prompts.WithDefaults(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}
}

// Enabled reports whether an LLM client is configured.
func (a *Assistant) Enabled() bool {
	return a.llm != nil
}

// remember serves key from the cache, or runs build once for all concurrent
// callers of the same key. build reports false for fallbacks, which are not
// stored. The shared build ignores the first caller's cancellation so other
// callers waiting on it are not cut short; a.timeout still bounds each attempt.
func remember[T any](ctx context.Context, a *Assistant, key string, build func(context.Context) (T, bool)) T {
	if v, ok := cache.Lookup[T](a.cache, key); ok {
		a.logger.Debug("cache hit", "key", key)
		return v
	}

	shared := context.WithoutCancel(ctx)
	v, _, _ := a.group.Do(key, func() (any, error) {
		if v, ok := cache.Lookup[T](a.cache, key); ok {
			return v, nil
		}
		res, ok := build(shared)
		if ok {
			a.cache.Set(key, res)
		}
		return res, nil
	})
	return v.(T)
}

type completion struct {
	prompt      string
	temperature float32
	maxTokens   int
	json        bool
}

func (a *Assistant) tokens(budget int) int {
	if a.maxTokens > 0 && a.maxTokens < budget {
		return a.maxTokens
	}
	return budget
}

func (a *Assistant) narrativeTemperature() float32 {
	if a.temperature > 0 {
		return a.temperature
	}
	return 0.7
}

// complete sends one system+user exchange through the retry policy.
func (a *Assistant) complete(ctx context.Context, c completion) (string, error) {
	req := llm.Request{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: a.prompts.System},
			{Role: llm.RoleUser, Content: c.prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		JSON:        c.json,
	}

	return retry.Do(ctx, a.retry, func(ctx context.Context) (string, error) {
		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		return a.llm.Generate(ctx, req)
	})
}

func (a *Assistant) degrade(feature, subjectID string, err error) {
	a.logger.Warn("falling back to default", "feature", feature, "subject", subjectID, "err", err)
}
