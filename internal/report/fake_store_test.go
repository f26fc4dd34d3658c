package report

import (
	"context"
	"time"

	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/store"
)

type fakeSale struct {
	Date    time.Time
	Total   float64
	Product string
	SocioID int64
}

type fakeContribution struct {
	Date    time.Time
	Amount  float64
	Tipo    string
	SocioID int64
}

type fakeHarvest struct {
	Date     time.Time
	Quantity float64
}

// fakeStore implements Storage in memory with the same half-open window
// semantics as the SQL layer.
type fakeStore struct {
	tables        []string
	catalogErr    error
	pingErr       error
	queryErr      error
	delay         time.Duration
	sales         []fakeSale
	contributions []fakeContribution
	harvests      []fakeHarvest
	activeMembers float64
	inventoryVal  float64
	availableCnt  float64
	performance   []models.RankingEntry
	topMembers    []models.RankingEntry
	products      []string
	byProduct     []models.CategoryValue
	byCategory    []models.CategoryValue
}

func allTables() []string {
	return []string{"ventas", "aportes", "socios", "inventario", "produccion", "report_audit"}
}

func (f *fakeStore) guard(ctx context.Context) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.queryErr != nil {
		return f.queryErr
	}
	return ctx.Err()
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ListTables(ctx context.Context) ([]string, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.tables, nil
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (f *fakeStore) SalesIncome(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range f.sales {
		if !inWindow(s.Date, start, end) {
			continue
		}
		if flt.Product != "" && s.Product != flt.Product {
			continue
		}
		if flt.SocioID != 0 && s.SocioID != flt.SocioID {
			continue
		}
		sum += s.Total
	}
	return sum, nil
}

func (f *fakeStore) SalesCount(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	var n float64
	for _, s := range f.sales {
		if inWindow(s.Date, start, end) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) sumContributions(ctx context.Context, start, end time.Time, tipos ...string) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(tipos))
	for _, t := range tipos {
		wanted[t] = true
	}
	var sum float64
	for _, c := range f.contributions {
		if inWindow(c.Date, start, end) && wanted[c.Tipo] {
			sum += c.Amount
		}
	}
	return sum, nil
}

func (f *fakeStore) ConfirmedContributions(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	return f.sumContributions(ctx, start, end, models.ContributionMonthly, models.ContributionExtraordinary)
}

func (f *fakeStore) MonthlyContributionCount(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	var n float64
	for _, c := range f.contributions {
		if inWindow(c.Date, start, end) && c.Tipo == models.ContributionMonthly {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LoansOut(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	return f.sumContributions(ctx, start, end, models.ContributionLoan)
}

func (f *fakeStore) ActiveMemberCount(ctx context.Context) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	return f.activeMembers, nil
}

func (f *fakeStore) InventoryValue(ctx context.Context) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	return f.inventoryVal, nil
}

func (f *fakeStore) AvailableItemCount(ctx context.Context) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	return f.availableCnt, nil
}

func (f *fakeStore) ProductionQuantity(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	var sum float64
	for _, h := range f.harvests {
		if inWindow(h.Date, start, end) {
			sum += h.Quantity
		}
	}
	return sum, nil
}

func (f *fakeStore) EstimatedProductionCost(ctx context.Context, start, end time.Time, flt store.Filters) (float64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	return 0, nil
}

func (f *fakeStore) SalesByProduct(ctx context.Context, start, end time.Time) ([]models.CategoryValue, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	return f.byProduct, nil
}

func (f *fakeStore) InventoryByCategory(ctx context.Context) ([]models.CategoryValue, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	return f.byCategory, nil
}

func (f *fakeStore) DistinctProducts(ctx context.Context) ([]string, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	return f.products, nil
}

func (f *fakeStore) TopMembersBySales(ctx context.Context, start, end time.Time, n int) ([]models.RankingEntry, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	if n < len(f.topMembers) {
		return f.topMembers[:n], nil
	}
	return f.topMembers, nil
}

func (f *fakeStore) ActiveMemberRoster(ctx context.Context) ([]models.RankingEntry, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	roster := make([]models.RankingEntry, len(f.performance))
	for i, entry := range f.performance {
		roster[i] = models.RankingEntry{EntityID: entry.EntityID, Label: entry.Label}
	}
	return roster, nil
}

func (f *fakeStore) TopProductsBySales(ctx context.Context, start, end time.Time, n int) ([]models.RankingEntry, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) MemberPerformance(ctx context.Context, start, end time.Time) ([]models.RankingEntry, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	return f.performance, nil
}
