package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"laluna/pkg/config"
	apperrors "laluna/pkg/errors"
	"laluna/pkg/interval"
	"laluna/pkg/model"
)

type AvailabilityService interface {
	FindAvailable(ctx context.Context, checkIn, checkOut string, guests int) ([]*model.Room, error)
}

type RoomFinder interface {
	FindByCapacity(ctx context.Context, minGuests int) ([]*model.Room, error)
}

type BookingLedger interface {
	BookedRoomIDs(ctx context.Context, iv interval.Interval) ([]model.RoomID, error)
}

type availabilityService struct {
	rooms    RoomFinder
	bookings BookingLedger
	cfg      *config.Config
}

func NewAvailabilityService(rooms RoomFinder, bookings BookingLedger, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		rooms:    rooms,
		bookings: bookings,
		cfg:      cfg,
	}
}

// FindAvailable returns the rooms that fit guests and have no non-cancelled
// booking overlapping [checkIn, checkOut). The result is a snapshot; a room
// listed here can still be taken before the caller books it.
func (s *availabilityService) FindAvailable(ctx context.Context, checkIn, checkOut string, guests int) ([]*model.Room, error) {
	iv, err := interval.Parse(checkIn, checkOut)
	if err != nil {
		if errors.Is(err, interval.ErrInvalidRange) {
			return nil, apperrors.InvalidRange(checkIn, checkOut)
		}
		return nil, apperrors.Validation("Availability query validation failed", map[string]any{"dates": err.Error()})
	}

	if guests == 0 {
		guests = model.DefaultGuests
	}
	if guests < model.MinGuests || guests > model.MaxGuests {
		return nil, apperrors.Validation("Availability query validation failed", map[string]any{
			"Guests": fmt.Sprintf("Guests must be between %d and %d", model.MinGuests, model.MaxGuests),
		})
	}

	var candidates []*model.Room
	var booked []model.RoomID
	var errRooms, errBooked error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		candidates, errRooms = s.rooms.FindByCapacity(ctx, guests)
	}()

	go func() {
		defer wg.Done()
		booked, errBooked = s.bookings.BookedRoomIDs(ctx, iv)
	}()

	wg.Wait()

	if errRooms != nil {
		return nil, errRooms
	}
	if errBooked != nil {
		return nil, errBooked
	}

	taken := make(map[model.RoomID]struct{}, len(booked))
	for _, id := range booked {
		taken[id] = struct{}{}
	}

	available := make([]*model.Room, 0, len(candidates))
	for _, room := range candidates {
		if _, ok := taken[model.RoomID(room.ID)]; ok {
			continue
		}
		available = append(available, room)
	}

	s.cfg.Log.WithContext(ctx).Debug("Availability query completed",
		"interval", iv.String(),
		"guests", guests,
		"candidates", len(candidates),
		"available", len(available),
	)
	return available, nil
}
