package logging

import (
	"io"
	"log"
	"log/slog"
	"time"

	"gorm.io/gorm/logger"
)

// New builds the application logger. format is "text" or "json"; level is one
// of debug, info, warn, error. Unknown levels fall back to info.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init builds the logger, installs it as the slog default and routes the
// standard log package through it.
func Init(w io.Writer, level, format string) *slog.Logger {
	l := New(w, level, format)
	slog.SetDefault(l)
	log.SetFlags(0)
	return l
}

// GormLogger bridges gorm's SQL logger onto l. Only warnings (slow queries)
// and errors are reported; missing records are expected and not logged.
func GormLogger(l *slog.Logger) logger.Interface {
	return logger.New(
		slog.NewLogLogger(l.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
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
