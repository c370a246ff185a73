package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/hltmenu/internal/config"
)

// New builds the process logger: a console writer in development or when the
// console format is requested, JSON otherwise.
func New(obs *config.ObservabilityConfig) zerolog.Logger {
	return NewWithWriter(obs, os.Stderr)
}

// NewWithWriter is New writing to w.
func NewWithWriter(obs *config.ObservabilityConfig, w io.Writer) zerolog.Logger {
	if obs == nil {
		obs = config.DefaultObservabilityConfig()
	}
	out := w
	if obs.Logging.Format == "console" || obs.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(out).Level(obs.LogLevel()).With().Timestamp()
	if obs.ServiceName != "" {
		ctx = ctx.Str("service", obs.ServiceName)
	}
	if obs.Environment != "" {
		ctx = ctx.Str("env", obs.Environment)
	}
	return ctx.Logger()
}
