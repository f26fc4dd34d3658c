package models

import "time"

// Event types
const (
	EventTypeReportGenerated  = "ReportGenerated"
	EventTypeDocumentExported = "DocumentExported"
)

// BaseEvent contains common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportGeneratedEvent is published after a dashboard payload is assembled
type ReportGeneratedEvent struct {
	BaseEvent
	Action      string   `json:"action"`
	PeriodLabel string   `json:"period_label"`
	Sources     []string `json:"sources"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// DocumentExportedEvent is published after a printable document is rendered
type DocumentExportedEvent struct {
	BaseEvent
	PeriodLabel string `json:"period_label"`
	Filename    string `json:"filename"`
	SizeBytes   int    `json:"size_bytes"`
}
