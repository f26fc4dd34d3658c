package report

import (
	"context"

	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/util"

	"go.uber.org/zap"
)

// Ranker produces Top-N rankings within the active window. Like every other
// aggregation it is capability-gated and fail-safe: a missing source or a
// failed query yields an empty (never nil) slice plus a diagnostic.
type Ranker struct {
	store  Storage
	caps   CapabilitySet
	diag   *Diagnostics
	logger *zap.Logger
}

func NewRanker(st Storage, caps CapabilitySet, diag *Diagnostics) *Ranker {
	return &Ranker{
		store:  st,
		caps:   caps,
		diag:   diag,
		logger: util.GetLogger(),
	}
}

func (r *Ranker) rank(ctx context.Context, name string, needed []Source, fn func(context.Context) ([]models.RankingEntry, error)) []models.RankingEntry {
	for _, src := range needed {
		if !r.caps.Has(src) {
			r.diag.Notef("%s unavailable: %s ranking is empty", src, name)
			util.MetricFallbacksTotal.WithLabelValues(string(src), "source_unavailable").Inc()
			return []models.RankingEntry{}
		}
	}

	entries, err := fn(ctx)
	if err != nil {
		r.diag.Notef("%s ranking failed, returned empty", name)
		r.logger.Warn("Ranking query degraded to empty",
			zap.String("ranking", name), zap.Error(err))
		return []models.RankingEntry{}
	}
	if entries == nil {
		entries = []models.RankingEntry{}
	}
	return entries
}

// TopMembers ranks members by windowed sale income, truncated to n.
func (r *Ranker) TopMembers(ctx context.Context, w Window, n int) []models.RankingEntry {
	return r.rank(ctx, "top_members", []Source{SourceMembers, SourceSales}, func(ctx context.Context) ([]models.RankingEntry, error) {
		return r.store.TopMembersBySales(ctx, w.Start, w.EndExclusive(), n)
	})
}

// TopProducts ranks product labels by windowed sale totals, truncated to n.
func (r *Ranker) TopProducts(ctx context.Context, w Window, n int) []models.RankingEntry {
	return r.rank(ctx, "top_products", []Source{SourceSales}, func(ctx context.Context) ([]models.RankingEntry, error) {
		return r.store.TopProductsBySales(ctx, w.Start, w.EndExclusive(), n)
	})
}

// MemberPerformance enumerates all active members with zero-filled windowed
// measures, for the member-performance chart. When the measure tables are
// not provisioned yet the roster is still enumerated, with zeroed measures.
func (r *Ranker) MemberPerformance(ctx context.Context, w Window) []models.RankingEntry {
	if !r.caps.Has(SourceSales) || !r.caps.Has(SourcePayments) {
		return r.rank(ctx, "member_roster", []Source{SourceMembers}, func(ctx context.Context) ([]models.RankingEntry, error) {
			return r.store.ActiveMemberRoster(ctx)
		})
	}
	return r.rank(ctx, "member_performance", []Source{SourceMembers}, func(ctx context.Context) ([]models.RankingEntry, error) {
		return r.store.MemberPerformance(ctx, w.Start, w.EndExclusive())
	})
}
