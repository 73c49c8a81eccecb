package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"laluna/pkg/kafka"
	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func eventMessage(t *testing.T, eventType string) kafka.Message {
	t.Helper()
	event := model.BookingEvent{
		ID:         "evt-1",
		Type:       eventType,
		BookingID:  "665f1c2e8b3a4d5e6f7081aa",
		RoomID:     "665f1c2e8b3a4d5e6f708192",
		GuestName:  "Ana Ruiz",
		Email:      "ana@example.com",
		CheckIn:    "2024-06-01",
		CheckOut:   "2024-06-05",
		Guests:     2,
		Status:     model.Confirmed,
		OccurredAt: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
	}
	msg, err := kafka.NewMessage().
		WithKey(event.RoomID.String()).
		WithValue(event).
		WithEventType(eventType).
		Build()
	require.NoError(t, err)
	return msg
}

func TestHandle_BookingCreated(t *testing.T) {
	sender := &recordingSender{}
	h := NewHandler(sender, logger.Discard())

	require.NoError(t, h.Handle(context.Background(), eventMessage(t, model.EventBookingCreated)))
	require.Len(t, sender.sent, 1)

	n := sender.sent[0]
	assert.Equal(t, "ana@example.com", n.To)
	assert.Equal(t, "evt-1", n.EventID)
	assert.Contains(t, n.Subject, "confirmed")
	assert.Contains(t, n.Body, "2024-06-01 to 2024-06-05")
}

func TestHandle_BookingCancelled(t *testing.T) {
	sender := &recordingSender{}
	h := NewHandler(sender, logger.Discard())

	require.NoError(t, h.Handle(context.Background(), eventMessage(t, model.EventBookingCancelled)))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "cancelled")
}

func TestHandle_UnknownEventIgnored(t *testing.T) {
	sender := &recordingSender{}
	h := NewHandler(sender, logger.Discard())

	require.NoError(t, h.Handle(context.Background(), eventMessage(t, "booking.archived")))
	assert.Empty(t, sender.sent)
}

func TestHandle_DecodeFailureIsPermanent(t *testing.T) {
	h := NewHandler(&recordingSender{}, logger.Discard())

	msg, err := kafka.NewMessage().WithKey("k").WithRawValue([]byte("{not json")).Build()
	require.NoError(t, err)

	err = h.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
	assert.False(t, kafka.ShouldRetry(err, 0, 3))
}

func TestHandle_SenderFailureIsTransient(t *testing.T) {
	h := NewHandler(&recordingSender{err: errors.New("smtp unavailable")}, logger.Discard())

	err := h.Handle(context.Background(), eventMessage(t, model.EventBookingCreated))
	require.Error(t, err)
	assert.True(t, kafka.ShouldRetry(err, 0, 3))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(logger.Discard()).Send(context.Background(), Notification{ID: "n-1"}))
}
