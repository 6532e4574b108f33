package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScanMetrics records per-file decode outcomes.
type ScanMetrics struct {
	decoded  metric.Int64Counter
	failed   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewScanMetrics registers the scan instruments on m.
func NewScanMetrics(m metric.Meter) (*ScanMetrics, error) {
	decoded, err := m.Int64Counter("acrossrec.files.decoded",
		metric.WithDescription("Replay files decoded successfully"))
	if err != nil {
		return nil, err
	}
	failed, err := m.Int64Counter("acrossrec.files.failed",
		metric.WithDescription("Replay files that failed to decode"))
	if err != nil {
		return nil, err
	}
	duration, err := m.Float64Histogram("acrossrec.decode.duration",
		metric.WithDescription("Time spent decoding one file"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &ScanMetrics{decoded: decoded, failed: failed, duration: duration}, nil
}

// Record adds one file outcome. stage is empty on success.
func (s *ScanMetrics) Record(ctx context.Context, version uint32, stage string, took time.Duration) {
	if s == nil {
		return
	}
	if stage == "" {
		s.decoded.Add(ctx, 1, metric.WithAttributes(attribute.Int("version", int(version))))
	} else {
		s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
	s.duration.Record(ctx, float64(took.Microseconds())/1000)
}
