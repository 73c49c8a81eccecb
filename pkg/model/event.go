package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	BookingID  string        `json:"booking_id"`
	RoomID     RoomID        `json:"room_id"`
	GuestName  string        `json:"guest_name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone,omitempty"`
	CheckIn    string        `json:"check_in"`
	CheckOut   string        `json:"check_out"`
	Guests     int           `json:"guests"`
	Status     BookingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func NewBookingEvent(eventType, eventID string, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		ID:         eventID,
		Type:       eventType,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		GuestName:  b.GuestName,
		Email:      b.Email,
		Phone:      b.Phone,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Guests:     b.Guests,
		Status:     b.Status,
		OccurredAt: at,
	}
}
