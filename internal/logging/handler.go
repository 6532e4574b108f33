package logging

import (
	"context"
	"errors"
	"log/slog"
)

// ScanHandler delivers each record to every sink that accepts its level and
// stamps it with the scan run in progress, if any.
type ScanHandler struct {
	sinks []slog.Handler
	runID func() string
}

// NewScanHandler drops nil sinks. runID may be nil.
func NewScanHandler(runID func() string, sinks ...slog.Handler) *ScanHandler {
	h := &ScanHandler{runID: runID}
	for _, s := range sinks {
		if s != nil {
			h.sinks = append(h.sinks, s)
		}
	}
	return h
}

func (h *ScanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle reports every sink failure but always tries all sinks.
func (h *ScanHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.runID != nil {
		if id := h.runID(); id != "" {
			r.AddAttrs(slog.String("run", id))
		}
	}
	var errs []error
	for _, s := range h.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *ScanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h *ScanHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.each(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *ScanHandler) each(fn func(slog.Handler) slog.Handler) *ScanHandler {
	sinks := make([]slog.Handler, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = fn(s)
	}
	return &ScanHandler{sinks: sinks, runID: h.runID}
}
