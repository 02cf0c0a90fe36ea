package app

import (
	"context"
	"errors"
	"time"

	"github.com/cimillas/festival/services/api/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Write outcomes reported by WriteMetrics.
const (
	outcomeOK       = "ok"
	outcomeConflict = "conflict"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// WriteMetrics records the outcome and latency of event writes.
type WriteMetrics interface {
	RecordWrite(ctx context.Context, op string, err error, duration time.Duration)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordWrite(context.Context, string, error, time.Duration) {}

type otelWriteMetrics struct {
	writes  metric.Int64Counter
	latency metric.Float64Histogram
}

// NewWriteMetrics builds instruments on the global meter provider. Install the
// provider before calling it.
func NewWriteMetrics() (WriteMetrics, error) {
	meter := otel.Meter(tracerName)

	writes, err := meter.Int64Counter("festival.event.writes",
		metric.WithDescription("Event writes by operation and outcome"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("festival.event.write.latency_ms",
		metric.WithDescription("Event write latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &otelWriteMetrics{writes: writes, latency: latency}, nil
}

func (m *otelWriteMetrics) RecordWrite(ctx context.Context, op string, err error, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", writeOutcome(err)),
	)
	m.writes.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func writeOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrConflict):
		return outcomeConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidID):
		return outcomeRejected
	default:
		return outcomeError
	}
}
