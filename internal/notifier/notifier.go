// Package notifier turns booking events into guest notifications.
package notifier

import (
	"context"
	"fmt"

	"laluna/pkg/kafka"
	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string
	EventID   string
	BookingID string
	To        string
	Subject   string
	Body      string
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

type Handler struct {
	sender Sender
	log    *logger.Logger
}

func NewHandler(sender Sender, log *logger.Logger) *Handler {
	return &Handler{
		sender: sender,
		log:    log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent
// failures; sender failures are transient and retried by the consumer.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err)
	}

	notification, ok := compose(event)
	if !ok {
		h.log.WithContext(ctx).Debug("Ignoring booking event", "event_type", event.Type, "event_id", event.ID)
		return nil
	}

	if err := h.sender.Send(ctx, notification); err != nil {
		return kafka.NewTransientError("failed to send notification", err)
	}

	h.log.WithContext(ctx).Info("Guest notified",
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"notification_id", notification.ID,
	)
	return nil
}

func compose(event model.BookingEvent) (Notification, bool) {
	n := Notification{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		BookingID: event.BookingID,
		To:        event.Email,
	}

	switch event.Type {
	case model.EventBookingCreated:
		n.Subject = "Your La Luna booking is " + string(event.Status)
		n.Body = fmt.Sprintf("Hi %s, your stay from %s to %s for %d guest(s) is %s. Booking reference: %s.",
			event.GuestName, event.CheckIn, event.CheckOut, event.Guests, event.Status, event.BookingID)
	case model.EventBookingCancelled:
		n.Subject = "Your La Luna booking was cancelled"
		n.Body = fmt.Sprintf("Hi %s, your stay from %s to %s has been cancelled. Booking reference: %s.",
			event.GuestName, event.CheckIn, event.CheckOut, event.BookingID)
	default:
		return Notification{}, false
	}
	return n, true
}

// LogSender writes notifications to the service log instead of delivering
// them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, n Notification) error {
	s.log.WithContext(ctx).Info("Notification sent",
		"notification_id", n.ID,
		"to", n.To,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}
