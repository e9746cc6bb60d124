package logger

import (
	"io"
	"log/slog"
	"strings"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Options struct {
	Level   string
	Format  string
	NoColor bool
}

// New returns the process logger: JSON lines by default, or the colored
// console handler when Format is "console".
func New(out io.Writer, opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)

	if strings.EqualFold(strings.TrimSpace(opts.Format), FormatConsole) {
		return slog.New(NewConsoleHandler(out, &ConsoleOptions{
			Level:   level,
			NoColor: opts.NoColor,
		}))
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "")
	}
	return slog.String("err", err.Error())
}
