// Package logger provides a colored slog handler for terminal output.
// Warnings render yellow, errors red, so failures stand out when the
// server runs in a terminal. Attributes render as key=value pairs.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// ColorHandler is a slog.Handler that writes human-readable colored lines.
type ColorHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewColorHandler creates a handler writing to out. A nil opts uses
// slog.LevelInfo.
func NewColorHandler(out io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{
		mu:  &sync.Mutex{},
		out: out,
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// NewDefaultLogger returns a slog.Logger writing colored output to stderr.
func NewDefaultLogger(level slog.Leveler) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}

	b.WriteString(levelColor(r.Level))
	b.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	b.WriteString(colorReset)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	// pre-set attrs were qualified when added; only record attrs take
	// the current group prefix
	for _, attr := range h.attrs {
		appendAttr(&b, "", attr)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, prefix, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	prefix := strings.Join(h.groups, ".")
	qualified := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		qualified = append(qualified, attr)
	}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), qualified...)
	return &clone
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level < slog.LevelInfo:
		return colorCyan
	default:
		return ""
	}
}

func appendAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, attr.Value.Resolve())
}
