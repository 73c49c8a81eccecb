package service

import (
	"context"
	"errors"

	roomserrors "laluna/internal/rooms/errors"
	"laluna/internal/rooms/repository"
	"laluna/internal/rooms/validator"
	"laluna/pkg/config"
	apperrors "laluna/pkg/errors"
	"laluna/pkg/model"
	"laluna/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context) ([]*model.Room, error)
	FindByCapacity(ctx context.Context, minGuests int) ([]*model.Room, error)
	Count(ctx context.Context) (int64, error)
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(repo repository.RoomRepository, validator *validator.RoomValidator, cfg *config.Config) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.applyDefaults(room)
	s.sanitize(room)
	if err := s.validate(room); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"name", room.Name,
		"capacity", room.Capacity,
	)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to get room", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) FindByCapacity(ctx context.Context, minGuests int) ([]*model.Room, error) {
	if minGuests < model.MinGuests {
		minGuests = model.MinGuests
	}

	rooms, err := s.repo.FindByMinCapacity(ctx, minGuests)
	if err != nil {
		s.cfg.Log.Error("Failed to find rooms by capacity", "min_guests", minGuests, "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("Failed to count rooms", err)
	}
	return count, nil
}

// --- Helpers ---

func (s *roomService) applyDefaults(room *model.Room) {
	if room.Beds == 0 {
		room.Beds = model.DefaultRoomBeds
	}
	if room.Capacity == 0 {
		room.Capacity = model.DefaultRoomCapacity
	}
}

func (s *roomService) sanitize(room *model.Room) {
	room.Name = sanitizer.NormalizeName(room.Name)
	room.RoomType = sanitizer.NormalizeLabel(room.RoomType)
	room.Description = sanitizer.TrimAndNormalize(room.Description)
	room.PricePerNight = sanitizer.NormalizePrice(room.PricePerNight)
	room.Amenities = sanitizer.NormalizeAmenities(room.Amenities)
	room.Images = sanitizer.NormalizeImages(room.Images)
}

func (s *roomService) validate(room *model.Room) error {
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Room validation failed", verrs.Details())
		}
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
