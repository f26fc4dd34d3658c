package report

import (
	"context"
	"errors"
	"time"

	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/store"
	"cooperativa-reports/internal/util"

	"go.uber.org/zap"
)

// Storage is the read-only query surface the engine needs from the backing
// store. It is injected rather than reached for globally so that every
// component is a pure function of its inputs and the current snapshot.
type Storage interface {
	Ping(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)

	SalesIncome(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)
	SalesCount(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)
	ConfirmedContributions(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)
	MonthlyContributionCount(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)
	LoansOut(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)
	ActiveMemberCount(ctx context.Context) (float64, error)
	InventoryValue(ctx context.Context) (float64, error)
	AvailableItemCount(ctx context.Context) (float64, error)
	ProductionQuantity(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)
	EstimatedProductionCost(ctx context.Context, start, end time.Time, f store.Filters) (float64, error)

	SalesByProduct(ctx context.Context, start, end time.Time) ([]models.CategoryValue, error)
	InventoryByCategory(ctx context.Context) ([]models.CategoryValue, error)
	DistinctProducts(ctx context.Context) ([]string, error)

	TopMembersBySales(ctx context.Context, start, end time.Time, n int) ([]models.RankingEntry, error)
	ActiveMemberRoster(ctx context.Context) ([]models.RankingEntry, error)
	TopProductsBySales(ctx context.Context, start, end time.Time, n int) ([]models.RankingEntry, error)
	MemberPerformance(ctx context.Context, start, end time.Time) ([]models.RankingEntry, error)
}

// Aggregator computes individual windowed metrics. Every metric is gated on
// the capability set and degrades to its zero value on any failure; only
// diagnostics and counters record that it happened. One Aggregator serves
// one request and is safe for the assembler's concurrent fan-out.
type Aggregator struct {
	store   Storage
	caps    CapabilitySet
	timeout time.Duration
	diag    *Diagnostics
	logger  *zap.Logger
}

func NewAggregator(st Storage, caps CapabilitySet, timeout time.Duration, diag *Diagnostics) *Aggregator {
	return &Aggregator{
		store:   st,
		caps:    caps,
		timeout: timeout,
		diag:    diag,
		logger:  util.GetLogger(),
	}
}

// run executes one aggregate query under the per-query timeout, converting
// every failure into the fail-safe zero.
func (a *Aggregator) run(ctx context.Context, src Source, metric string, fn func(context.Context) (float64, error)) float64 {
	if !a.caps.Has(src) {
		a.diag.Notef("%s unavailable: %s reported as 0", src, metric)
		util.MetricFallbacksTotal.WithLabelValues(string(src), "source_unavailable").Inc()
		return 0
	}

	qctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	v, err := fn(qctx)
	util.AggregateQueryLatency.WithLabelValues(string(src)).Observe(time.Since(started).Seconds())

	if err != nil {
		reason := "query_error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
			util.QueryTimeoutsTotal.Inc()
		}
		util.MetricFallbacksTotal.WithLabelValues(string(src), reason).Inc()
		a.diag.Notef("%s/%s: %s, reported as 0", src, metric, reason)
		a.logger.Warn("Aggregate query degraded to zero",
			zap.String("source", string(src)),
			zap.String("metric", metric),
			zap.Error(err))
		return 0
	}
	return v
}

// TotalIncome sums sale totals in the window.
func (a *Aggregator) TotalIncome(ctx context.Context, w Window, f store.Filters) float64 {
	return a.run(ctx, SourceSales, "total_income", func(ctx context.Context) (float64, error) {
		return a.store.SalesIncome(ctx, w.Start, w.EndExclusive(), f)
	})
}

// SalesCount counts non-cancelled sales in the window.
func (a *Aggregator) SalesCount(ctx context.Context, w Window, f store.Filters) float64 {
	return a.run(ctx, SourceSales, "sales_count", func(ctx context.Context) (float64, error) {
		return a.store.SalesCount(ctx, w.Start, w.EndExclusive(), f)
	})
}

// TotalContributions sums confirmed monthly and extraordinary contributions.
func (a *Aggregator) TotalContributions(ctx context.Context, w Window, f store.Filters) float64 {
	return a.run(ctx, SourcePayments, "total_contributions", func(ctx context.Context) (float64, error) {
		return a.store.ConfirmedContributions(ctx, w.Start, w.EndExclusive(), f)
	})
}

// MonthlyContributionCount counts confirmed monthly contributions.
func (a *Aggregator) MonthlyContributionCount(ctx context.Context, w Window, f store.Filters) float64 {
	return a.run(ctx, SourcePayments, "monthly_contribution_count", func(ctx context.Context) (float64, error) {
		return a.store.MonthlyContributionCount(ctx, w.Start, w.EndExclusive(), f)
	})
}

// LoansOut sums confirmed loan disbursements.
func (a *Aggregator) LoansOut(ctx context.Context, w Window, f store.Filters) float64 {
	return a.run(ctx, SourcePayments, "loans_out", func(ctx context.Context) (float64, error) {
		return a.store.LoansOut(ctx, w.Start, w.EndExclusive(), f)
	})
}

// ActiveMembers counts members currently marked active.
func (a *Aggregator) ActiveMembers(ctx context.Context) int64 {
	v := a.run(ctx, SourceMembers, "active_members", func(ctx context.Context) (float64, error) {
		return a.store.ActiveMemberCount(ctx)
	})
	return int64(v)
}

// InventoryValue sums available stock value.
func (a *Aggregator) InventoryValue(ctx context.Context) float64 {
	return a.run(ctx, SourceInventory, "inventory_value", func(ctx context.Context) (float64, error) {
		return a.store.InventoryValue(ctx)
	})
}

// AvailableItems counts available inventory line items.
func (a *Aggregator) AvailableItems(ctx context.Context) int64 {
	v := a.run(ctx, SourceInventory, "available_items", func(ctx context.Context) (float64, error) {
		return a.store.AvailableItemCount(ctx)
	})
	return int64(v)
}

// ProductionQuantity sums harvested quantity in the window.
func (a *Aggregator) ProductionQuantity(ctx context.Context, w Window, f store.Filters) float64 {
	return a.run(ctx, SourceProduction, "production_quantity", func(ctx context.Context) (float64, error) {
		return a.store.ProductionQuantity(ctx, w.Start, w.EndExclusive(), f)
	})
}

// EstimatedProductionCost values the window's harvest at average sale
// prices. Needs both the production and sales sources.
func (a *Aggregator) EstimatedProductionCost(ctx context.Context, w Window, f store.Filters) float64 {
	if !a.caps.Has(SourceSales) {
		a.diag.Notef("sales unavailable: estimated_production_cost reported as 0")
		util.MetricFallbacksTotal.WithLabelValues(string(SourceSales), "source_unavailable").Inc()
		return 0
	}
	return a.run(ctx, SourceProduction, "estimated_production_cost", func(ctx context.Context) (float64, error) {
		return a.store.EstimatedProductionCost(ctx, w.Start, w.EndExclusive(), f)
	})
}
