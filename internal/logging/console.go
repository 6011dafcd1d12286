package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "15:04:05"

// consoleHandler writes one human-readable line per record:
//
//	15:04:05 INFO  detector [bgm01.sgb]: detection complete streams=3
//
// The component and the source file basename are lifted out of the
// attributes into the prefix. Attributes added through WithAttrs are
// rendered once and reused.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool

	component string
	source    string
	prefix    string // group path for attribute keys, "a.b."
	rendered  string // pre-rendered WithAttrs output, leading space included
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	line := *h
	var attrs strings.Builder
	r.Attrs(func(a slog.Attr) bool {
		line.appendAttr(&attrs, h.prefix, a)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	fmt.Fprintf(&b, " %-5s ", levelLabel(r.Level))
	if line.component != "" {
		b.WriteString(line.component)
		if line.source != "" {
			b.WriteString(" [" + line.source + "]")
		}
		b.WriteString(": ")
	} else if line.source != "" {
		b.WriteString("[" + line.source + "] ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.addSource && r.PC != 0 {
		if src := r.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteString(h.rendered)
	b.WriteString(attrs.String())
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	var b strings.Builder
	b.WriteString(h.rendered)
	for _, a := range attrs {
		next.appendAttr(&b, h.prefix, a)
	}
	next.rendered = b.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// appendAttr renders a as " key=value", flattening groups into dotted keys.
// Top-level component and source attributes are captured instead.
func (h *consoleHandler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if prefix == "" {
		switch a.Key {
		case FieldComponent:
			if h.component == "" {
				h.component = valueText(a.Value)
			}
			return
		case FieldSource:
			h.source = filepath.Base(valueText(a.Value))
			return
		}
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, inner, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix + a.Key)
	b.WriteByte('=')
	b.WriteString(quoteIfNeeded(valueText(a.Value)))
}

func valueText(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().Local().Format(time.DateTime)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
