package models

import "time"

// KPISet is the fixed dashboard KPI payload. Every field defaults to zero
// when its backing source is absent or empty; consumers never see nulls.
type KPISet struct {
	TotalIncome        float64 `json:"totalIncome"`
	IncomeChangePct    float64 `json:"incomeChangePct"`
	TotalContributions float64 `json:"totalContributions"`
	ActiveMembers      int64   `json:"activeMembers"`
	InventoryValue     float64 `json:"inventoryValue"`
	AvailableItemCount int64   `json:"availableItemCount"`
	GrossMarginPct     float64 `json:"grossMarginPct"`
}

// ChartData is one named chart: labels plus one or more series keyed by
// name, all index-aligned with labels.
type ChartData struct {
	Labels []string             `json:"labels"`
	Series map[string][]float64 `json:"series"`
}

// RankingEntry is one row of a Top-N ranking.
type RankingEntry struct {
	EntityID         int64   `db:"entity_id" json:"entity_id"`
	Label            string  `db:"label" json:"label"`
	Measure          float64 `db:"measure" json:"measure"`
	SecondaryMeasure float64 `db:"secondary_measure" json:"secondary_measure"`
}

// SummaryLine is one row of the period-over-period summary table.
type SummaryLine struct {
	MetricName       string  `json:"metricName"`
	CurrentDisplay   string  `json:"currentDisplay"`
	PreviousDisplay  string  `json:"previousDisplay"`
	PercentChange    float64 `json:"percentChangeFloat"`
}

// Comparison is a (current, previous, percentChange) triple for one metric.
type Comparison struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	PercentChange float64 `json:"percentChange"`
}

// Dashboard is the merged response for the kpis/charts actions.
type Dashboard struct {
	KPIs        KPISet               `json:"kpis"`
	Charts      map[string]ChartData `json:"charts"`
	Ranking     []RankingEntry       `json:"ranking"`
	PeriodLabel string               `json:"periodLabel"`
	Diagnostics []string             `json:"diagnostics,omitempty"`
}

// DocumentExport is the printable report payload.
type DocumentExport struct {
	CooperativeName string    `json:"cooperativeName"`
	GeneratedAt     time.Time `json:"generatedAt"`
	PeriodLabel     string    `json:"periodLabel"`
	Filename        string    `json:"filename"`
	DocumentBody    string    `json:"documentBody"`
}

// CategoryValue is one label/value pair from a group-by breakdown query.
type CategoryValue struct {
	Label string  `db:"label" json:"label"`
	Value float64 `db:"value" json:"value"`
}
