package report

import (
	"context"
	"time"

	"cooperativa-reports/internal/store"
)

// BuildSeries evaluates a metric over count consecutive monthly buckets
// ending at the month containing now, oldest first. Buckets with no matching
// rows report 0, so labels and values are always exactly count long and
// index-aligned. Multi-series charts call this once per series and zip on
// the shared labels.
func BuildSeries(ctx context.Context, now time.Time, count int, f store.Filters, metric MetricFunc) (labels []string, values []float64) {
	buckets := MonthlyBuckets(now, count)
	labels = make([]string, len(buckets))
	values = make([]float64, len(buckets))
	for i, bucket := range buckets {
		labels[i] = MonthLabel(bucket)
		values[i] = metric(ctx, bucket, f)
	}
	return labels, values
}
