package model

import (
	"time"

	"laluna/pkg/interval"
)

type BookingStatus string

const (
	Pending   BookingStatus = "pending"
	Confirmed BookingStatus = "confirmed"
	Cancelled BookingStatus = "cancelled"
)

const (
	MinGuests     = 1
	MaxGuests     = 12
	DefaultGuests = 1
)

type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID          RoomID        `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestName       string        `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	Email           string        `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone           string        `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	CheckIn         string        `json:"check_in" bson:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string        `json:"check_out" bson:"check_out" validate:"required,datetime=2006-01-02"`
	Guests          int           `json:"guests" bson:"guests" validate:"min=1,max=12"`
	SpecialRequests string        `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=1000"`
	Status          BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

func (b *Booking) Interval() (interval.Interval, error) {
	return interval.Parse(b.CheckIn, b.CheckOut)
}

// Blocking reports whether the booking still holds its room.
func (b *Booking) Blocking() bool {
	return b.Status != Cancelled
}
