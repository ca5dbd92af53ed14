package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds instruments for cart operations.
type Metrics struct {
	operationsTotal      metric.Int64Counter
	persistFailuresTotal metric.Int64Counter
}

// NewMetrics registers cart instruments on the meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.operationsTotal, err = meter.Int64Counter(
		"cart_operations_total",
		metric.WithDescription("Total cart mutations by operation"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_operations_total counter: %w", err)
	}

	m.persistFailuresTotal, err = meter.Int64Counter(
		"cart_persist_failures_total",
		metric.WithDescription("Cart storage writes that failed"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_persist_failures_total counter: %w", err)
	}

	return m, nil
}

// RecordOperation counts a cart mutation.
func (m *Metrics) RecordOperation(ctx context.Context, operation string) {
	m.operationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordPersistFailure counts a swallowed storage write failure.
func (m *Metrics) RecordPersistFailure(ctx context.Context) {
	m.persistFailuresTotal.Add(ctx, 1)
}
