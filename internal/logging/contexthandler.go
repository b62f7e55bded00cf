package logging

import (
	"context"
	"log/slog"
)

// TickKey is the attribute a run logger stamps on every record.
const TickKey = "tick"

// ContextProvider returns attributes that are read at log time, such as the
// simulation tick a record was written on.
type ContextProvider func() []slog.Attr

// ContextHandler appends the provider's attributes to each record before
// passing it on. The provider is called once per record, after any groups
// opened with WithGroup.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps inner. A nil provider adds nothing.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider}
}

// NewTickHandler wraps inner so each record carries the tick returned by
// current under TickKey. current must be safe to call from any goroutine.
func NewTickHandler(inner slog.Handler, current func() uint) *ContextHandler {
	return NewContextHandler(inner, func() []slog.Attr {
		return []slog.Attr{slog.Uint64(TickKey, uint64(current()))}
	})
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}
