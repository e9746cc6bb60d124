package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type ConsoleOptions struct {
	Level      slog.Leveler
	TimeFormat string
	NoColor    bool
}

// ConsoleHandler writes one colored human-readable line per record.
type ConsoleHandler struct {
	opts   ConsoleOptions
	attrs  []slog.Attr
	groups []string

	mu  *sync.Mutex
	out io.Writer
}

func NewConsoleHandler(out io.Writer, opts *ConsoleOptions) *ConsoleHandler {
	h := &ConsoleHandler{out: out, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	if h.opts.TimeFormat == "" {
		h.opts.TimeFormat = time.DateTime
	}
	return h
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var bf bytes.Buffer

	if !r.Time.IsZero() {
		bf.WriteString(h.paint(color.New(color.Faint), r.Time.Format(h.opts.TimeFormat)))
		bf.WriteByte(' ')
	}

	bf.WriteString(h.levelLabel(r.Level))
	bf.WriteString(" | ")
	bf.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	for _, a := range attrs {
		keyColor := color.New(color.FgCyan)
		if strings.Contains(a.Key, "err") {
			keyColor = color.New(color.FgRed)
		}
		fmt.Fprintf(&bf, " %s%s", h.paint(keyColor, prefix+a.Key+"="), a.Value.String())
	}
	bf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(bf.Bytes())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	h2.attrs = append(h2.attrs, attrs...)
	return h2
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	return &ConsoleHandler{
		opts:   h.opts,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
		mu:     h.mu,
		out:    h.out,
	}
}

func (h *ConsoleHandler) levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.paint(color.New(color.BgRed, color.FgHiWhite), "ERROR")
	case level >= slog.LevelWarn:
		return h.paint(color.New(color.BgYellow, color.FgHiWhite), "WARN ")
	case level >= slog.LevelInfo:
		return h.paint(color.New(color.BgGreen, color.FgHiWhite), "INFO ")
	default:
		return h.paint(color.New(color.BgCyan, color.FgHiWhite), "DEBUG")
	}
}

func (h *ConsoleHandler) paint(c *color.Color, s string) string {
	if h.opts.NoColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}
