package report

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/template"
	"time"

	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/store"
	"cooperativa-reports/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// formatMeasure renders a metric for display: money with two decimals,
// counts as plain integers.
func formatMeasure(v float64, money bool) string {
	if money {
		return "$" + decimal.NewFromFloat(v).StringFixed(2)
	}
	return strconv.FormatInt(int64(v), 10)
}

const emptySection = "sin registros en el período"

// documentTemplate renders the printable report. Sections with no data show
// an explanatory empty-state line instead of failing the whole document.
var documentTemplate = template.Must(template.New("document").Parse(`{{.CooperativeName}}
REPORTE DE GESTIÓN
Período: {{.PeriodLabel}}
Generado: {{.GeneratedAt}}

== INDICADORES ==
Ingresos por ventas:      {{.TotalIncome}} ({{.IncomeChangePct}}% vs período anterior)
Aportes confirmados:      {{.TotalContributions}}
Socios activos:           {{.ActiveMembers}}
Valor de inventario:      {{.InventoryValue}}
Artículos disponibles:    {{.AvailableItems}}
Margen bruto estimado:    {{.GrossMarginPct}}%

== VENTAS POR PRODUCTO ==
{{- if .ProductLines}}
{{- range .ProductLines}}
{{.Label}}: {{.Value}}
{{- end}}
{{- else}}
{{.EmptySection}}
{{- end}}

== MEJORES SOCIOS ==
{{- if .RankingLines}}
{{- range .RankingLines}}
{{.Position}}. {{.Label}}: {{.Value}} ({{.Count}} ventas)
{{- end}}
{{- else}}
{{.EmptySection}}
{{- end}}

== RESUMEN EJECUTIVO ==
{{.ExecutiveSummary}}
`))

type documentLine struct {
	Position int
	Label    string
	Value    string
	Count    int
}

type documentData struct {
	CooperativeName    string
	PeriodLabel        string
	GeneratedAt        string
	TotalIncome        string
	IncomeChangePct    string
	TotalContributions string
	ActiveMembers      string
	InventoryValue     string
	AvailableItems     string
	GrossMarginPct     string
	ProductLines       []documentLine
	RankingLines       []documentLine
	ExecutiveSummary   string
	EmptySection       string
}

// Document renders the self-contained printable report for the period.
func (e *Engine) Document(ctx context.Context, p Period) (*models.DocumentExport, error) {
	ctx, span := util.StartSpan(ctx, "Engine.Document")
	defer span.End()

	if err := e.checkBackend(ctx); err != nil {
		return nil, err
	}

	caps := e.detector.Detect(ctx)
	diag := NewDiagnostics()
	agg := NewAggregator(e.store, caps, e.queryTimeout(), diag)
	ranker := NewRanker(e.store, caps, diag)

	income := Compare(ctx, p, store.Filters{}, agg.TotalIncome)
	contributions := agg.TotalContributions(ctx, p.Current, store.Filters{})
	activeMembers := agg.ActiveMembers(ctx)
	inventoryValue := agg.InventoryValue(ctx)
	availableItems := agg.AvailableItems(ctx)
	marginPct := e.margin.GrossMarginPct(ctx, agg, p.Current, store.Filters{})

	productLines := e.productSectionLines(ctx, caps, diag, p)

	ranking := ranker.TopMembers(ctx, p.Current, e.cfg.TopN)
	rankingLines := make([]documentLine, len(ranking))
	for i, entry := range ranking {
		rankingLines[i] = documentLine{
			Position: i + 1,
			Label:    entry.Label,
			Value:    formatMeasure(entry.Measure, true),
			Count:    int(entry.SecondaryMeasure),
		}
	}

	generatedAt := time.Now().UTC()
	data := documentData{
		CooperativeName:    e.cfg.CooperativeName,
		PeriodLabel:        p.Current.Label(),
		GeneratedAt:        generatedAt.Format("2006-01-02 15:04 UTC"),
		TotalIncome:        formatMeasure(income.Current, true),
		IncomeChangePct:    strconv.FormatFloat(income.PercentChange, 'f', 1, 64),
		TotalContributions: formatMeasure(contributions, true),
		ActiveMembers:      strconv.FormatInt(activeMembers, 10),
		InventoryValue:     formatMeasure(inventoryValue, true),
		AvailableItems:     strconv.FormatInt(availableItems, 10),
		GrossMarginPct:     strconv.FormatFloat(marginPct, 'f', 1, 64),
		ProductLines:       productLines,
		RankingLines:       rankingLines,
		ExecutiveSummary:   executiveSummary(e.cfg.CooperativeName, p, income, activeMembers, contributions),
		EmptySection:       emptySection,
	}

	var body bytes.Buffer
	if err := documentTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	doc := &models.DocumentExport{
		CooperativeName: e.cfg.CooperativeName,
		GeneratedAt:     generatedAt,
		PeriodLabel:     p.Current.Label(),
		Filename: fmt.Sprintf("reporte_%s_%s.txt",
			p.Current.Start.Format("200601"), uuid.New().String()[:8]),
		DocumentBody: body.String(),
	}

	util.DocumentsExportedTotal.Inc()
	util.ReportsAssembledTotal.WithLabelValues("export_document").Inc()
	e.publishExported(ctx, doc)

	return doc, nil
}

func (e *Engine) productSectionLines(ctx context.Context, caps CapabilitySet, diag *Diagnostics, p Period) []documentLine {
	if !caps.Has(SourceSales) {
		diag.Notef("sales unavailable: product section is empty")
		return nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout())
	defer cancel()

	rows, err := e.store.SalesByProduct(qctx, p.Current.Start, p.Current.EndExclusive())
	if err != nil {
		diag.Notef("product section failed, rendered empty")
		e.logger.Warn("Document product section degraded to empty", zap.Error(err))
		return nil
	}

	lines := make([]documentLine, len(rows))
	for i, row := range rows {
		lines[i] = documentLine{Label: row.Label, Value: formatMeasure(row.Value, true)}
	}
	return lines
}

func executiveSummary(name string, p Period, income models.Comparison, members int64, contributions float64) string {
	trend := "se mantuvo estable"
	if income.PercentChange > 0 {
		trend = fmt.Sprintf("creció un %.1f%%", income.PercentChange)
	} else if income.PercentChange < 0 {
		trend = fmt.Sprintf("cayó un %.1f%%", -income.PercentChange)
	}
	return fmt.Sprintf(
		"Durante el período %s, %s registró ingresos por %s; la facturación %s respecto al período anterior. "+
			"Los %d socios activos aportaron %s en contribuciones confirmadas.",
		p.Current.Label(), name, formatMeasure(income.Current, true), trend,
		members, formatMeasure(contributions, true))
}

func (e *Engine) publishExported(ctx context.Context, doc *models.DocumentExport) {
	if e.publisher == nil {
		return
	}
	event := &models.DocumentExportedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeDocumentExported,
			Timestamp: time.Now(),
		},
		PeriodLabel: doc.PeriodLabel,
		Filename:    doc.Filename,
		SizeBytes:   len(doc.DocumentBody),
	}
	if err := e.publisher.PublishDocumentExported(ctx, event); err != nil {
		e.logger.Error("Failed to publish DocumentExported event", zap.Error(err))
	}
}
