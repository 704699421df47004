package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Nadrieril/rustorio/internal/application/common"
	"github.com/Nadrieril/rustorio/internal/infrastructure/config"
)

// SlogLogger adapts log/slog to the application logger port
type SlogLogger struct {
	logger *slog.Logger
}

// NewLogger builds a logger from configuration
func NewLogger(cfg *config.LoggingConfig) (*SlogLogger, error) {
	var out io.Writer
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	default:
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &SlogLogger{logger: slog.New(handler)}, nil
}

var _ common.Logger = (*SlogLogger)(nil)

// Log implements the application logger port
func (l *SlogLogger) Log(level, message string, metadata map[string]interface{}) {
	attrs := make([]any, 0, len(metadata)*2)
	for k, v := range metadata {
		attrs = append(attrs, k, v)
	}
	switch level {
	case "debug":
		l.logger.Debug(message, attrs...)
	case "warn":
		l.logger.Warn(message, attrs...)
	case "error":
		l.logger.Error(message, attrs...)
	default:
		l.logger.Info(message, attrs...)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
