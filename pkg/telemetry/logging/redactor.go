package logging

import (
	"context"
	"log/slog"

	"mercator-hq/ganymede/pkg/redaction"
)

// redactingHandler masks sensitive string values in log records before
// delegating to the wrapped handler. It rewrites the message and every
// string-valued attribute, including attributes added via WithAttrs.
type redactingHandler struct {
	inner  slog.Handler
	masker *redaction.Masker
}

func newRedactingHandler(inner slog.Handler, masker *redaction.Masker) *redactingHandler {
	return &redactingHandler{inner: inner, masker: masker}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, h.masker.Mask(record.Message, nil), record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redactAttr(attr))
		return true
	})

	return h.inner.Handle(ctx, clean)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = h.redactAttr(attr)
	}
	return &redactingHandler{inner: h.inner.WithAttrs(redacted), masker: h.masker}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{inner: h.inner.WithGroup(name), masker: h.masker}
}

func (h *redactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, h.masker.Mask(attr.Value.String(), nil))
	case slog.KindGroup:
		members := attr.Value.Group()
		redacted := make([]any, 0, len(members))
		for _, member := range members {
			redacted = append(redacted, h.redactAttr(member))
		}
		return slog.Group(attr.Key, redacted...)
	default:
		return attr
	}
}
