package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cooperativa-reports/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing report domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishReportGenerated publishes ReportGenerated event
func (ep *EventPublisher) PublishReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error {
	key := fmt.Sprintf("report-%s", event.EventID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDocumentExported publishes DocumentExported event
func (ep *EventPublisher) PublishDocumentExported(ctx context.Context, event *models.DocumentExportedEvent) error {
	key := fmt.Sprintf("document-%s", event.EventID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming report events to registered handlers
type EventHandler struct {
	onReportGenerated  func(context.Context, *models.ReportGeneratedEvent) error
	onDocumentExported func(context.Context, *models.DocumentExportedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnReportGenerated registers a handler for ReportGenerated events
func (eh *EventHandler) OnReportGenerated(handler func(context.Context, *models.ReportGeneratedEvent) error) {
	eh.onReportGenerated = handler
}

// OnDocumentExported registers a handler for DocumentExported events
func (eh *EventHandler) OnDocumentExported(handler func(context.Context, *models.DocumentExportedEvent) error) {
	eh.onDocumentExported = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeReportGenerated:
		if eh.onReportGenerated != nil {
			var event models.ReportGeneratedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReportGenerated event: %w", err)
			}
			return eh.onReportGenerated(ctx, &event)
		}

	case models.EventTypeDocumentExported:
		if eh.onDocumentExported != nil {
			var event models.DocumentExportedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal DocumentExported event: %w", err)
			}
			return eh.onDocumentExported(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
