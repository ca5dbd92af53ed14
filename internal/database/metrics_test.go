package database

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordQuery(t *testing.T) {
	t.Run("records one data point per kv operation", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

		metrics, err := NewMetrics(mp.Meter("test"))
		if err != nil {
			t.Fatalf("NewMetrics() failed: %v", err)
		}

		ctx := context.Background()
		metrics.RecordQuery(ctx, "kv_get", 0.002)
		metrics.RecordQuery(ctx, "kv_set", 0.004)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("failed to collect metrics: %v", err)
		}

		found := false
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "db_query_duration_seconds" {
					continue
				}
				found = true
				histogram, ok := m.Data.(metricdata.Histogram[float64])
				if !ok {
					t.Fatal("expected Histogram[float64] data")
				}
				// One series per operation label.
				if len(histogram.DataPoints) != 2 {
					t.Errorf("expected 2 data points, got %d", len(histogram.DataPoints))
				}
			}
		}
		if !found {
			t.Error("db_query_duration_seconds metric not found")
		}
	})
}
