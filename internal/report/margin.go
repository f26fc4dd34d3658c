package report

import (
	"context"
	"math"

	"cooperativa-reports/internal/store"
)

// MarginStrategy computes the gross margin KPI for a window. The margin
// calculation is pluggable because the cooperative has no real cost model
// yet: the default estimates cost from an indirect production/sales join
// and should be replaced once per-product costs are tracked.
type MarginStrategy interface {
	GrossMarginPct(ctx context.Context, agg *Aggregator, w Window, f store.Filters) float64
}

// EstimatedCostMargin is the placeholder default strategy. It values the
// window's harvest at each member's average sale price and treats that as
// cost of goods sold. The resulting figure is an estimate, not accounting.
type EstimatedCostMargin struct{}

func (EstimatedCostMargin) GrossMarginPct(ctx context.Context, agg *Aggregator, w Window, f store.Filters) float64 {
	income := agg.TotalIncome(ctx, w, f)
	if income == 0 {
		return 0
	}
	cost := agg.EstimatedProductionCost(ctx, w, f)
	return math.Round((income-cost)/income*1000) / 10
}
