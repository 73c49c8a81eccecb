package model

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRoomCapacity = 1
	MaxRoomCapacity = 12
	MinRoomBeds     = 1
	MaxRoomBeds     = 6

	DefaultRoomBeds     = 1
	DefaultRoomCapacity = 2
)

type Room struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	RoomType      string    `json:"room_type" bson:"room_type" validate:"required,min=2,max=50"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Beds          int       `json:"beds" bson:"beds" validate:"min=1,max=6"`
	Capacity      int       `json:"capacity" bson:"capacity" validate:"min=1,max=12"`
	PricePerNight float64   `json:"price_per_night" bson:"price_per_night" validate:"gte=0"`
	Amenities     []string  `json:"amenities" bson:"amenities" validate:"max=50,dive,min=1,max=50"`
	Images        []string  `json:"images" bson:"images" validate:"max=20,dive,url"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RoomID is the canonical reference to a room: the lower-case hex form of
// its ObjectID. Bookings store it verbatim so equality filters never miss.
type RoomID string

func ParseRoomID(s string) (RoomID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid room id %q: %w", s, err)
	}
	return RoomID(oid.Hex()), nil
}

func (id RoomID) String() string {
	return string(id)
}

func (id RoomID) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(string(id))
}
