package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

const logTimeLayout = "2006-01-02 15:04:05"

// LogSink appends timestamped diagnostic lines to a file.
// Each line is written with its own open/append/close under a mutex so
// concurrent writers never interleave. Failures are dropped silently.
type LogSink struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLogSink creates a sink writing to path
func NewLogSink(path string) *LogSink {
	return &LogSink{
		path: path,
		now:  time.Now,
	}
}

// Append writes "[YYYY-MM-DD HH:MM:SS] message" in local time
func (s *LogSink) Append(message string) {
	line := "[" + s.now().Local().Format(logTimeLayout) + "] " + message + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.WriteString(line)
}

// sinkHandler is a slog.Handler that flattens records into LogSink lines:
//
//	LEVEL msg key=value key=value
type sinkHandler struct {
	sink  *LogSink
	attrs string // pre-rendered attributes from WithAttrs
	group string
}

func newSinkHandler(sink *LogSink) *sinkHandler {
	return &sinkHandler{sink: sink}
}

func (h *sinkHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *sinkHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	if r.Level != slog.LevelInfo {
		sb.WriteString(r.Level.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Message)

	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})

	h.sink.Append(sb.String())
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&sb, h.group, a)
	}
	next := *h
	next.attrs = sb.String()
	return &next
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

func writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	sb.WriteByte(' ')
	if group != "" {
		sb.WriteString(group)
		sb.WriteByte('.')
	}
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(fmt.Sprintf("%v", a.Value.Resolve().Any()))
}

// fanoutHandler sends every record to each handler that accepts its level
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// newLogger logs everything to the sink and, when stderr is non-nil,
// echoes warnings and errors there in colour.
func newLogger(sink *LogSink, stderr io.Writer) *slog.Logger {
	handlers := []slog.Handler{newSinkHandler(sink)}
	if stderr != nil {
		handlers = append(handlers, tint.NewHandler(stderr, &tint.Options{
			Level:      slog.LevelWarn,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(&fanoutHandler{handlers: handlers})
}
