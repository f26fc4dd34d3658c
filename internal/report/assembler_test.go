package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"cooperativa-reports/config"
	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(st *fakeStore) *Engine {
	engine := NewEngine(st, NewDetector(st, nil, 0), nil, nil, config.ReportConfig{
		CooperativeName:     "Cooperativa La Esperanza",
		QueryTimeoutSeconds: 2,
		SeriesMonths:        6,
		TopN:                5,
	})
	engine.now = func() time.Time { return date(2024, 3, 15) }
	return engine
}

func marchPeriod(t *testing.T) Period {
	t.Helper()
	p, err := ResolvePeriod("2024-03-01", "2024-03-31", date(2024, 3, 15))
	require.NoError(t, err)
	return p
}

func TestDashboardRoundTrip(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		sales: []fakeSale{
			{Date: date(2024, 3, 10), Total: 100, Product: "café"},
		},
		activeMembers: 12,
	}
	engine := testEngine(st)

	dashboard, err := engine.Dashboard(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 100.0, dashboard.KPIs.TotalIncome)
	assert.Equal(t, int64(12), dashboard.KPIs.ActiveMembers)

	financial := dashboard.Charts["evolucion_financiera"]
	require.Len(t, financial.Labels, 6)
	income := financial.Series["ingresos"]
	require.Len(t, income, 6)
	assert.Equal(t, 100.0, income[5], "March bucket carries the sale")
	for i := 0; i < 5; i++ {
		assert.Zero(t, income[i])
	}
}

func TestDashboardAbsentInventorySource(t *testing.T) {
	st := &fakeStore{
		tables:       []string{"ventas", "aportes", "socios", "produccion"},
		inventoryVal: 9999, // must never surface: the table is absent
		availableCnt: 7,
	}
	engine := testEngine(st)

	dashboard, err := engine.Dashboard(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)

	assert.Zero(t, dashboard.KPIs.InventoryValue)
	assert.Zero(t, dashboard.KPIs.AvailableItemCount)
	assert.NotEmpty(t, dashboard.Diagnostics)

	chart := dashboard.Charts["inventario_por_categoria"]
	assert.NotNil(t, chart.Labels)
	assert.Empty(t, chart.Labels)
	assert.Empty(t, chart.Series["valor"])
}

func TestDashboardFixedChartSet(t *testing.T) {
	st := &fakeStore{tables: []string{}}
	engine := testEngine(st)

	dashboard, err := engine.Dashboard(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)

	for _, name := range []string{
		"evolucion_financiera", "aportes_vs_cuota", "inventario_por_categoria",
		"ventas_por_producto", "tendencia_produccion", "rendimiento_socios",
	} {
		_, ok := dashboard.Charts[name]
		assert.True(t, ok, "chart %s must be present even with no sources", name)
	}
	assert.NotNil(t, dashboard.Ranking)
	assert.Empty(t, dashboard.Ranking)
}

func TestDashboardStorageUnreachableIsFatal(t *testing.T) {
	st := &fakeStore{tables: allTables(), pingErr: errors.New("connection refused")}
	engine := testEngine(st)

	_, err := engine.Dashboard(context.Background(), marchPeriod(t), store.Filters{})
	assert.ErrorIs(t, err, ErrStorageUnreachable)
}

func TestDashboardRankingDeterministic(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		topMembers: []models.RankingEntry{
			{EntityID: 2, Label: "Ana", Measure: 500, SecondaryMeasure: 3},
			{EntityID: 5, Label: "Luis", Measure: 500, SecondaryMeasure: 2},
			{EntityID: 9, Label: "Rosa", Measure: 120, SecondaryMeasure: 1},
		},
	}
	engine := testEngine(st)

	first, err := engine.Dashboard(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)
	second, err := engine.Dashboard(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)

	assert.Equal(t, first.Ranking, second.Ranking)
}

func TestSummaryPercentChange(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		sales: []fakeSale{
			{Date: date(2024, 2, 10), Total: 200},
			{Date: date(2024, 3, 10), Total: 150},
		},
	}
	engine := testEngine(st)

	lines, _, err := engine.Summary(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	income := lines[0]
	assert.Equal(t, "Ingresos por ventas", income.MetricName)
	assert.Equal(t, "$150.00", income.CurrentDisplay)
	assert.Equal(t, "$200.00", income.PreviousDisplay)
	assert.Equal(t, -25.0, income.PercentChange)
}

func TestSummaryNoContributions(t *testing.T) {
	st := &fakeStore{tables: allTables()}
	engine := testEngine(st)

	lines, diagnostics, err := engine.Summary(context.Background(), marchPeriod(t), store.Filters{})
	require.NoError(t, err)
	assert.Empty(t, diagnostics)

	contributions := lines[1]
	assert.Equal(t, "Aportes confirmados", contributions.MetricName)
	assert.Equal(t, "$0.00", contributions.CurrentDisplay)
	assert.Equal(t, 0.0, contributions.PercentChange)
}

func TestProductsAbsentSourceYieldsEmptyList(t *testing.T) {
	st := &fakeStore{tables: []string{"socios"}, products: []string{"café"}}
	engine := testEngine(st)

	products, err := engine.Products(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductsListsDistinctLabels(t *testing.T) {
	st := &fakeStore{tables: allTables(), products: []string{"cacao", "café"}}
	engine := testEngine(st)

	products, err := engine.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cacao", "café"}, products)
}
