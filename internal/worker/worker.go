package worker

import (
	"context"
	"log"
	"time"

	"cooperativa-reports/internal/broker"
	"cooperativa-reports/internal/models"
	"cooperativa-reports/internal/store"
)

// AuditWorker consumes report events and records them in the audit trail.
// The audit insert is idempotent on event id, so kafka redeliveries are
// harmless.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, st *store.Store) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		store:    st,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnReportGenerated(w.handleReportGenerated)
	eventHandler.OnDocumentExported(w.handleDocumentExported)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting report audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping report audit worker...")
	return w.consumer.Close()
}

func (w *AuditWorker) handleReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error {
	return w.store.RecordReportAudit(ctx, &models.ReportAudit{
		EventID:     event.EventID,
		EventType:   event.EventType,
		Action:      event.Action,
		PeriodLabel: event.PeriodLabel,
		RecordedAt:  time.Now().UTC(),
	})
}

func (w *AuditWorker) handleDocumentExported(ctx context.Context, event *models.DocumentExportedEvent) error {
	return w.store.RecordReportAudit(ctx, &models.ReportAudit{
		EventID:     event.EventID,
		EventType:   event.EventType,
		Action:      "export_document",
		PeriodLabel: event.PeriodLabel,
		RecordedAt:  time.Now().UTC(),
	})
}
