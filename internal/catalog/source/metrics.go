package source

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds instruments for catalog source calls.
type Metrics struct {
	fetchDuration metric.Float64Histogram
	fetchesTotal  metric.Int64Counter
}

// NewMetrics registers catalog source instruments on the meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.fetchDuration, err = meter.Float64Histogram(
		"catalog_fetch_duration_seconds",
		metric.WithDescription("Duration of catalog source fetches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create catalog_fetch_duration histogram: %w", err)
	}

	m.fetchesTotal, err = meter.Int64Counter(
		"catalog_fetches_total",
		metric.WithDescription("Total catalog source fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create catalog_fetches_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) record(ctx context.Context, operation string, err error, durationSeconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.fetchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.fetchDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// Observable decorates a source with fetch metrics and spans.
type Observable struct {
	inner   ports.Source
	metrics *Metrics
}

// NewObservable wraps a source with metric recording.
func NewObservable(inner ports.Source, metrics *Metrics) *Observable {
	return &Observable{inner: inner, metrics: metrics}
}

func (o *Observable) Products(ctx context.Context) ([]domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogSource.Products")
	defer span.End()

	start := time.Now()
	products, err := o.inner.Products(ctx)
	o.metrics.record(ctx, "products", err, time.Since(start).Seconds())
	telemetry.RecordError(span, err)
	return products, err
}

func (o *Observable) Product(ctx context.Context, id int) (domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogSource.Product")
	defer span.End()

	start := time.Now()
	product, err := o.inner.Product(ctx, id)
	o.metrics.record(ctx, "product", err, time.Since(start).Seconds())
	telemetry.RecordError(span, err)
	return product, err
}

func (o *Observable) Categories(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogSource.Categories")
	defer span.End()

	start := time.Now()
	categories, err := o.inner.Categories(ctx)
	o.metrics.record(ctx, "categories", err, time.Since(start).Seconds())
	telemetry.RecordError(span, err)
	return categories, err
}
