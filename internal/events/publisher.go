// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"fmt"
	"time"

	"laluna/pkg/kafka"
	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/google/uuid"
)

const (
	SchemaVersion = "1"
	Source        = "laluna-reservations"
)

type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking) error
	Close() error
}

// MessageWriter is the subset of *kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer MessageWriter
	log    *logger.Logger
	now    func() time.Time
}

func NewKafkaPublisher(writer MessageWriter, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		writer: writer,
		log:    log,
		now:    time.Now,
	}
}

// Publish emits a BookingEvent keyed by room id, so events for one room keep
// their order within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) error {
	eventID := uuid.NewString()
	occurredAt := p.now().UTC()
	event := model.NewBookingEvent(eventType, eventID, booking, occurredAt)

	msg, err := kafka.NewMessage().
		WithKey(booking.RoomID.String()).
		WithValue(event).
		WithEventID(eventID).
		WithEventType(eventType).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(occurredAt).
		WithTraceContext(ctx).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}

	if err := p.writer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.log.WithContext(ctx).Debug("Booking event published",
		"event_id", eventID,
		"event_type", eventType,
		"booking_id", booking.ID,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when
// events are disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Booking) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
