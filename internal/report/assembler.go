package report

import (
	"context"
	"fmt"
	"time"

	"cooperativa-reports/config"
	"cooperativa-reports/internal/broker"
	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/redisclient"
	"cooperativa-reports/internal/store"
	"cooperativa-reports/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine assembles report payloads. It holds no per-request state: each
// invocation detects capabilities, builds a request-scoped aggregator and
// ranker, fans the independent aggregations out concurrently, and merges
// their results into a fixed-shape payload. Two aggregations in one report
// may observe slightly different snapshots if writers are active elsewhere;
// reads are best-effort read-committed, not a point-in-time view.
type Engine struct {
	store     Storage
	detector  *Detector
	cache     *redisclient.Client
	publisher *broker.EventPublisher
	margin    MarginStrategy
	cfg       config.ReportConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewEngine(
	st Storage,
	detector *Detector,
	cache *redisclient.Client,
	publisher *broker.EventPublisher,
	cfg config.ReportConfig,
) *Engine {
	if cfg.QueryTimeoutSeconds <= 0 {
		cfg.QueryTimeoutSeconds = 5
	}
	if cfg.SeriesMonths < 1 {
		cfg.SeriesMonths = 6
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if cfg.MaxConcurrency <= 0 || cfg.MaxConcurrency > 8 {
		cfg.MaxConcurrency = 8
	}
	return &Engine{
		store:     st,
		detector:  detector,
		cache:     cache,
		publisher: publisher,
		margin:    EstimatedCostMargin{},
		cfg:       cfg,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// SetMarginStrategy swaps the gross-margin calculation.
func (e *Engine) SetMarginStrategy(m MarginStrategy) {
	e.margin = m
}

func (e *Engine) queryTimeout() time.Duration {
	return time.Duration(e.cfg.QueryTimeoutSeconds) * time.Second
}

// checkBackend fails the whole report when the backend is unreachable.
func (e *Engine) checkBackend(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, e.queryTimeout())
	defer cancel()
	if err := e.store.Ping(pctx); err != nil {
		util.ReportsFailedTotal.WithLabelValues("storage_unreachable").Inc()
		return fmt.Errorf("%w: %v", ErrStorageUnreachable, err)
	}
	return nil
}

func dashboardCacheKey(p Period, f store.Filters) string {
	return fmt.Sprintf("report:dashboard:%s:%s:%s:%d",
		p.Current.Start.Format(dateLayout), p.Current.End.Format(dateLayout),
		f.Product, f.SocioID)
}

// Dashboard assembles the full KPI + charts + ranking payload for a period.
func (e *Engine) Dashboard(ctx context.Context, p Period, f store.Filters) (*models.Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "Engine.Dashboard")
	defer span.End()

	started := time.Now()
	defer func() {
		util.AssemblyLatency.Observe(time.Since(started).Seconds())
	}()

	if err := e.checkBackend(ctx); err != nil {
		return nil, err
	}

	if e.cache != nil {
		var cached models.Dashboard
		hit, err := e.cache.GetJSON(ctx, dashboardCacheKey(p, f), &cached)
		if err == nil && hit {
			util.DashboardCacheHitsTotal.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		util.DashboardCacheHitsTotal.WithLabelValues("miss").Inc()
	}

	caps := e.detector.Detect(ctx)
	diag := NewDiagnostics()
	agg := NewAggregator(e.store, caps, e.queryTimeout(), diag)
	ranker := NewRanker(e.store, caps, diag)

	var (
		kpis    models.KPISet
		charts  = make(map[string]models.ChartData, 6)
		ranking []models.RankingEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)

	// KPI set
	g.Go(func() error {
		income := Compare(gctx, p, f, agg.TotalIncome)
		kpis.TotalIncome = income.Current
		kpis.IncomeChangePct = income.PercentChange
		return nil
	})
	g.Go(func() error {
		kpis.TotalContributions = agg.TotalContributions(gctx, p.Current, f)
		return nil
	})
	g.Go(func() error {
		kpis.ActiveMembers = agg.ActiveMembers(gctx)
		return nil
	})
	g.Go(func() error {
		kpis.InventoryValue = agg.InventoryValue(gctx)
		kpis.AvailableItemCount = agg.AvailableItems(gctx)
		return nil
	})
	g.Go(func() error {
		kpis.GrossMarginPct = e.margin.GrossMarginPct(gctx, agg, p.Current, f)
		return nil
	})

	// Charts; each goroutine owns its map entry, assigned after Wait.
	var (
		financial    models.ChartData
		quota        models.ChartData
		inventoryCat models.ChartData
		salesProduct models.ChartData
		productionTr models.ChartData
		memberPerf   models.ChartData
	)
	g.Go(func() error {
		financial = e.financialEvolutionChart(gctx, agg, f)
		return nil
	})
	g.Go(func() error {
		quota = e.contributionsVsQuotaChart(gctx, agg, f)
		return nil
	})
	g.Go(func() error {
		inventoryCat = e.categoryChart(gctx, caps, diag, SourceInventory, "inventario_por_categoria", e.store.InventoryByCategory)
		return nil
	})
	g.Go(func() error {
		salesProduct = productSalesChart(ranker.TopProducts(gctx, p.Current, e.cfg.TopN*2))
		return nil
	})
	g.Go(func() error {
		labels, values := BuildSeries(gctx, e.now(), e.cfg.SeriesMonths, f, agg.ProductionQuantity)
		productionTr = models.ChartData{
			Labels: labels,
			Series: map[string][]float64{"cantidad": values},
		}
		return nil
	})
	g.Go(func() error {
		memberPerf = memberPerformanceChart(ranker.MemberPerformance(gctx, p.Current))
		return nil
	})

	// Ranking
	g.Go(func() error {
		ranking = ranker.TopMembers(gctx, p.Current, e.cfg.TopN)
		return nil
	})

	// The goroutines never return errors; per-metric failures are already
	// absorbed as zero values. Wait only propagates context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	charts["evolucion_financiera"] = financial
	charts["aportes_vs_cuota"] = quota
	charts["inventario_por_categoria"] = inventoryCat
	charts["ventas_por_producto"] = salesProduct
	charts["tendencia_produccion"] = productionTr
	charts["rendimiento_socios"] = memberPerf

	result := &models.Dashboard{
		KPIs:        kpis,
		Charts:      charts,
		Ranking:     ranking,
		PeriodLabel: p.Current.Label(),
		Diagnostics: diag.Notes(),
	}

	if e.cache != nil {
		ttl := time.Duration(e.cfg.CacheTTLSeconds) * time.Second
		if err := e.cache.SetJSON(ctx, dashboardCacheKey(p, f), result, ttl); err != nil {
			e.logger.Warn("Failed to cache dashboard payload", zap.Error(err))
		}
	}

	util.ReportsAssembledTotal.WithLabelValues("dashboard").Inc()
	e.publishGenerated(ctx, "dashboard", p, caps, diag)

	return result, nil
}

// financialEvolutionChart builds the income / contributions / loans monthly
// trend.
func (e *Engine) financialEvolutionChart(ctx context.Context, agg *Aggregator, f store.Filters) models.ChartData {
	labels, income := BuildSeries(ctx, e.now(), e.cfg.SeriesMonths, f, agg.TotalIncome)
	_, contributions := BuildSeries(ctx, e.now(), e.cfg.SeriesMonths, f, agg.TotalContributions)
	_, loans := BuildSeries(ctx, e.now(), e.cfg.SeriesMonths, f, agg.LoansOut)
	return models.ChartData{
		Labels: labels,
		Series: map[string][]float64{
			"ingresos":  income,
			"aportes":   contributions,
			"prestamos": loans,
		},
	}
}

// contributionsVsQuotaChart compares confirmed monthly contributions per
// bucket against the expected quota, one contribution per active member.
func (e *Engine) contributionsVsQuotaChart(ctx context.Context, agg *Aggregator, f store.Filters) models.ChartData {
	labels, counts := BuildSeries(ctx, e.now(), e.cfg.SeriesMonths, f, agg.MonthlyContributionCount)
	expected := float64(agg.ActiveMembers(ctx))
	quota := make([]float64, len(counts))
	for i := range quota {
		quota[i] = expected
	}
	return models.ChartData{
		Labels: labels,
		Series: map[string][]float64{
			"aportes_mensuales": counts,
			"cuota_esperada":    quota,
		},
	}
}

// categoryChart builds a label/value breakdown chart, degrading to empty
// arrays (never nil) when the source is absent or the query fails.
func (e *Engine) categoryChart(ctx context.Context, caps CapabilitySet, diag *Diagnostics, src Source, name string, fn func(context.Context) ([]models.CategoryValue, error)) models.ChartData {
	empty := models.ChartData{
		Labels: []string{},
		Series: map[string][]float64{"valor": {}},
	}
	if !caps.Has(src) {
		diag.Notef("%s unavailable: %s chart is empty", src, name)
		return empty
	}

	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout())
	defer cancel()

	rows, err := fn(qctx)
	if err != nil {
		diag.Notef("%s chart failed, returned empty", name)
		e.logger.Warn("Breakdown chart degraded to empty",
			zap.String("chart", name), zap.Error(err))
		return empty
	}

	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Label
		values[i] = row.Value
	}
	return models.ChartData{
		Labels: labels,
		Series: map[string][]float64{"valor": values},
	}
}

func productSalesChart(entries []models.RankingEntry) models.ChartData {
	labels := make([]string, len(entries))
	totals := make([]float64, len(entries))
	quantities := make([]float64, len(entries))
	for i, entry := range entries {
		labels[i] = entry.Label
		totals[i] = entry.Measure
		quantities[i] = entry.SecondaryMeasure
	}
	return models.ChartData{
		Labels: labels,
		Series: map[string][]float64{
			"total":    totals,
			"cantidad": quantities,
		},
	}
}

func memberPerformanceChart(entries []models.RankingEntry) models.ChartData {
	labels := make([]string, len(entries))
	income := make([]float64, len(entries))
	contributions := make([]float64, len(entries))
	for i, entry := range entries {
		labels[i] = entry.Label
		income[i] = entry.Measure
		contributions[i] = entry.SecondaryMeasure
	}
	return models.ChartData{
		Labels: labels,
		Series: map[string][]float64{
			"ingresos": income,
			"aportes":  contributions,
		},
	}
}

// Summary assembles the period-over-period comparison table.
func (e *Engine) Summary(ctx context.Context, p Period, f store.Filters) ([]models.SummaryLine, []string, error) {
	ctx, span := util.StartSpan(ctx, "Engine.Summary")
	defer span.End()

	if err := e.checkBackend(ctx); err != nil {
		return nil, nil, err
	}

	caps := e.detector.Detect(ctx)
	diag := NewDiagnostics()
	agg := NewAggregator(e.store, caps, e.queryTimeout(), diag)

	type metricSpec struct {
		name  string
		fn    MetricFunc
		money bool
	}
	specs := []metricSpec{
		{"Ingresos por ventas", agg.TotalIncome, true},
		{"Aportes confirmados", agg.TotalContributions, true},
		{"Ventas realizadas", agg.SalesCount, false},
		{"Producción cosechada", agg.ProductionQuantity, false},
	}

	lines := make([]models.SummaryLine, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			cmp := Compare(gctx, p, f, spec.fn)
			lines[i] = models.SummaryLine{
				MetricName:      spec.name,
				CurrentDisplay:  formatMeasure(cmp.Current, spec.money),
				PreviousDisplay: formatMeasure(cmp.Previous, spec.money),
				PercentChange:   cmp.PercentChange,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	util.ReportsAssembledTotal.WithLabelValues("summary").Inc()
	return lines, diag.Notes(), nil
}

// Products lists the distinct product labels present in sales, for the
// cross-filter picker. An absent sales source yields an empty list.
func (e *Engine) Products(ctx context.Context) ([]string, error) {
	if err := e.checkBackend(ctx); err != nil {
		return nil, err
	}

	caps := e.detector.Detect(ctx)
	if !caps.Has(SourceSales) {
		return []string{}, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout())
	defer cancel()

	products, err := e.store.DistinctProducts(qctx)
	if err != nil {
		e.logger.Warn("Product list query degraded to empty", zap.Error(err))
		return []string{}, nil
	}
	if products == nil {
		products = []string{}
	}
	return products, nil
}

func (e *Engine) publishGenerated(ctx context.Context, action string, p Period, caps CapabilitySet, diag *Diagnostics) {
	if e.publisher == nil {
		return
	}
	event := &models.ReportGeneratedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReportGenerated,
			Timestamp: time.Now(),
		},
		Action:      action,
		PeriodLabel: p.Current.Label(),
		Sources:     caps.Names(),
		Diagnostics: diag.Notes(),
	}
	if err := e.publisher.PublishReportGenerated(ctx, event); err != nil {
		e.logger.Error("Failed to publish ReportGenerated event", zap.Error(err))
	}
}
