package log

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Handler implements slog.Handler by formatting records into single text
// lines and routing them through the host's log function. env.log takes
// plain UTF-8, so records are rendered here rather than serialized.
type Handler struct {
	opts  handlerConfig
	attrs []slog.Attr
	group string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report. Records below this level
// are filtered on the guest side and never cross the boundary.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of the source location (file:line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg}
}

// SetDefault installs a Handler as slog's default logger, so plain
// slog.Info calls inside the contract reach the host.
func SetDefault(opts ...HandlerOption) {
	slog.SetDefault(slog.New(NewHandler(opts...)))
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle formats the record and sends it to the host.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Level.String())
	b.WriteByte(' ')
	b.WriteString(record.Message)

	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		fmt.Fprintf(&b, " source=%s:%d", frame.File, frame.Line)
	}

	for _, attr := range h.attrs {
		writeAttr(&b, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.qualify(attr))
		return true
	})

	Log(b.String())
	return nil
}

// WithAttrs returns a Handler that includes the given attributes on every
// record. Attributes are qualified with the current group at call time.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(attr))
	}
	return &clone
}

// WithGroup returns a Handler that prefixes subsequent attribute keys with
// the group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *Handler) qualify(attr slog.Attr) slog.Attr {
	if h.group == "" {
		return attr
	}
	attr.Key = h.group + "." + attr.Key
	return attr
}

func writeAttr(b *strings.Builder, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(attr.Value.String())
}
