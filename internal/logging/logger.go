package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/agenthands/carecircle/internal/config"
)

// New builds the root logger. Format "json" selects the JSON formatter,
// anything else the human-readable text formatter.
func New(w io.Writer, cfg config.LogConfig) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}

	formatter := log.TextFormatter
	if strings.EqualFold(cfg.Format, "json") {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
	})
}

// For returns a child logger tagged with the component name.
func For(base *log.Logger, component string) *log.Logger {
	if base == nil {
		base = log.Default()
	}
	return base.With("component", component)
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
