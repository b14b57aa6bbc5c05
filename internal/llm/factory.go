package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/agenthands/carecircle/internal/config"
)

// NewClient builds the provider client named in cfg. Keyed providers with no
// API key return ErrMissingAPIKey so callers can run with AI disabled.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *log.Logger) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)

	if provider != "ollama" && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return c, nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}

		if logger != nil {
			logger.Info("using ollama through its OpenAI-compatible API", "base_url", baseURL)
		}

		// Ollama ignores the key but the client wants one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
