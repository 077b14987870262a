package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the structured logging surface the services depend on.
// Arguments are slog-style alternating key/value pairs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	logger *slog.Logger
}

// New returns a JSON logger on stdout at the given level. Unknown or
// empty levels fall back to info so a misconfigured LOG_LEVEL never
// silences the service.
func New(level string) Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter is New with a custom destination, used by tests.
func NewWithWriter(level string, w io.Writer) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &slogLogger{logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// With returns a logger that attaches the given attributes to every record.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// Default returns an info-level logger, handy in tests and tools.
func Default() Logger {
	return New("info")
}
