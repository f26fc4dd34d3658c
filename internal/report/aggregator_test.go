package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"cooperativa-reports/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchWindow() Window {
	return Window{Start: date(2024, 3, 1), End: date(2024, 3, 31)}
}

func capsFor(st *fakeStore) CapabilitySet {
	return NewDetector(st, nil, 0).Detect(context.Background())
}

func TestAggregatorSumsWindowedIncome(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		sales: []fakeSale{
			{Date: date(2024, 3, 10), Total: 100, Product: "café"},
			{Date: date(2024, 2, 20), Total: 40, Product: "café"},
			{Date: date(2024, 4, 1), Total: 70, Product: "cacao"},
		},
	}
	agg := NewAggregator(st, capsFor(st), time.Second, NewDiagnostics())

	assert.Equal(t, 100.0, agg.TotalIncome(context.Background(), marchWindow(), store.Filters{}))
}

func TestAggregatorAppliesEqualityFilter(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		sales: []fakeSale{
			{Date: date(2024, 3, 10), Total: 100, Product: "café"},
			{Date: date(2024, 3, 12), Total: 60, Product: "cacao"},
		},
	}
	agg := NewAggregator(st, capsFor(st), time.Second, NewDiagnostics())

	got := agg.TotalIncome(context.Background(), marchWindow(), store.Filters{Product: "cacao"})
	assert.Equal(t, 60.0, got)
}

func TestAggregatorZeroWhenSourceAbsent(t *testing.T) {
	st := &fakeStore{
		tables: []string{"socios"}, // no ventas, aportes, inventario
		sales:  []fakeSale{{Date: date(2024, 3, 10), Total: 100}},
	}
	diag := NewDiagnostics()
	agg := NewAggregator(st, capsFor(st), time.Second, diag)
	ctx := context.Background()

	assert.Equal(t, 0.0, agg.TotalIncome(ctx, marchWindow(), store.Filters{}))
	assert.Equal(t, 0.0, agg.TotalContributions(ctx, marchWindow(), store.Filters{}))
	assert.Equal(t, 0.0, agg.InventoryValue(ctx))
	assert.Equal(t, int64(0), agg.AvailableItems(ctx))
	assert.NotEmpty(t, diag.Notes())
}

func TestAggregatorZeroOnQueryError(t *testing.T) {
	st := &fakeStore{
		tables:   allTables(),
		queryErr: errors.New("relation does not exist"),
	}
	diag := NewDiagnostics()
	agg := NewAggregator(st, capsFor(st), time.Second, diag)

	assert.Equal(t, 0.0, agg.TotalIncome(context.Background(), marchWindow(), store.Filters{}))
	require.Len(t, diag.Notes(), 1)
	assert.Contains(t, diag.Notes()[0], "query_error")
}

func TestAggregatorZeroOnTimeout(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		delay:  100 * time.Millisecond,
		sales:  []fakeSale{{Date: date(2024, 3, 10), Total: 100}},
	}
	diag := NewDiagnostics()
	agg := NewAggregator(st, capsFor(st), 10*time.Millisecond, diag)

	assert.Equal(t, 0.0, agg.TotalIncome(context.Background(), marchWindow(), store.Filters{}))
	require.Len(t, diag.Notes(), 1)
	assert.Contains(t, diag.Notes()[0], "timeout")
}

func TestBuildSeriesZeroFills(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		sales:  []fakeSale{{Date: date(2024, 3, 10), Total: 100}},
	}
	agg := NewAggregator(st, capsFor(st), time.Second, NewDiagnostics())

	labels, values := BuildSeries(context.Background(), date(2024, 3, 15), 6, store.Filters{}, agg.TotalIncome)

	require.Len(t, labels, 6)
	require.Len(t, values, 6)
	assert.Equal(t, "mar 2024", labels[5])
	assert.Equal(t, 100.0, values[5])
	for i := 0; i < 5; i++ {
		assert.Zero(t, values[i], "bucket %s should be empty", labels[i])
	}
}

func TestBuildSeriesLengthAlwaysMatchesBucketCount(t *testing.T) {
	st := &fakeStore{tables: allTables()}
	agg := NewAggregator(st, capsFor(st), time.Second, NewDiagnostics())

	for _, count := range []int{1, 3, 12} {
		labels, values := BuildSeries(context.Background(), date(2024, 3, 15), count, store.Filters{}, agg.TotalIncome)
		assert.Len(t, labels, count)
		assert.Len(t, values, count)
	}
}
