package store

import (
	"context"

	"cooperativa-reports/internal/models"
)

// RecordReportAudit inserts one audit row for a generated report or exported
// document. The event id is the primary key, so redelivered kafka messages
// are absorbed instead of duplicated.
func (s *Store) RecordReportAudit(ctx context.Context, audit *models.ReportAudit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_audit (event_id, event_type, action, period_label, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING`,
		audit.EventID, audit.EventType, audit.Action, audit.PeriodLabel, audit.RecordedAt)
	return err
}

// IsAuditRecorded checks whether an event has already been recorded.
func (s *Store) IsAuditRecorded(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM report_audit WHERE event_id = $1)", eventID)
	return exists, err
}
