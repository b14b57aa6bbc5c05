package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/agenthands/carecircle/internal/config"
	"github.com/agenthands/carecircle/internal/core/cache"
	"github.com/agenthands/carecircle/internal/core/insight"
	"github.com/agenthands/carecircle/internal/core/retry"
	"github.com/agenthands/carecircle/internal/llm"
	"github.com/agenthands/carecircle/internal/logging"
	"github.com/agenthands/carecircle/internal/server"
	"github.com/agenthands/carecircle/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logging.New(os.Stderr, config.LogConfig{}).Fatal("failed to load configuration", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.Log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(ctx, cfg.LLM, logging.For(logger, "llm"))
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		logger.Warn("no LLM API key configured, AI features will return defaults", "provider", cfg.LLM.Provider)
		client = nil
	case err != nil:
		logger.Fatal("failed to initialize LLM client", "err", err)
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	db, err := store.Open(ctx, cfg.Store, logging.For(logger, "store"))
	if err != nil {
		logger.Fatal("failed to open store", "backend", cfg.Store.Backend, "err", err)
	}
	defer db.Close(context.Background())

	clock := clockwork.NewRealClock()
	assistantLogger := logging.For(logger, "insight")
	assistant := insight.New(insight.Config{
		LLM:   client,
		Store: db,
		Cache: cache.New(cfg.Cache.TTL.Duration, cfg.Cache.Capacity, clock),
		Retry: retry.Policy{
			Retries: cfg.Retry.Retries,
			Delay:   cfg.Retry.Delay.Duration,
			Logger:  assistantLogger,
		},
		Prompts:     cfg.Prompts,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout.Duration,
		Clock:       clock,
		Logger:      assistantLogger,
	})

	srv := server.NewServer(assistant, logging.For(logger, "http"), clock)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.SetupRouter(),
	}

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "ai_enabled", assistant.Enabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
