package report

import (
	"context"
	"math"

	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/store"
)

// MetricFunc is one windowed aggregation, as exposed by the Aggregator.
type MetricFunc func(ctx context.Context, w Window, f store.Filters) float64

// Compare evaluates a metric over both windows of the period and derives
// the percent change. The two sub-queries are independent reads; both must
// complete before the percentage exists, which is a join point, not shared
// state.
func Compare(ctx context.Context, p Period, f store.Filters, metric MetricFunc) models.Comparison {
	current := metric(ctx, p.Current, f)
	previous := metric(ctx, p.Previous, f)
	return models.Comparison{
		Current:       current,
		Previous:      previous,
		PercentChange: PercentChange(current, previous),
	}
}

// PercentChange computes the period-over-period change rounded to one
// decimal. A zero baseline yields 0, never NaN or infinity: "no baseline"
// canonically means 0% change.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}
