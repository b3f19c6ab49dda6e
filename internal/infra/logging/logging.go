// File: internal/infra/logging/logging.go
package logging

import (
	"io"
	"strings"
	"time"

	"outreach-call-harness/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Console is the default for an interactive
// harness; JSON is for CI capture.
func New(out io.Writer, cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
		base = zerolog.New(cw).Level(level).With().Timestamp().Logger()
	} else {
		base = zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return &base
}

// WithRun attaches the per-run trace id so every line of a run correlates.
func WithRun(base *zerolog.Logger, runID string) *zerolog.Logger {
	l := base.With().Str("run_id", runID).Logger()
	return &l
}
