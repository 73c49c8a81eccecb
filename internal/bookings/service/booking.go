package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "laluna/internal/bookings/errors"
	"laluna/internal/bookings/repository"
	"laluna/internal/bookings/validator"
	"laluna/internal/events"
	"laluna/pkg/config"
	apperrors "laluna/pkg/errors"
	"laluna/pkg/interval"
	"laluna/pkg/lock"
	"laluna/pkg/model"
	"laluna/pkg/sanitizer"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "laluna/internal/bookings/service"

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, email string) ([]*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	HasConflict(ctx context.Context, roomID model.RoomID, iv interval.Interval) (bool, error)
	BookedRoomIDs(ctx context.Context, iv interval.Interval) ([]model.RoomID, error)
}

// RoomCatalog resolves the room a booking refers to. Errors are expected to
// be *AppError values (InvalidID, NotFound, Internal).
type RoomCatalog interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     RoomCatalog
	guard     lock.Guard
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	tracer    trace.Tracer
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms RoomCatalog,
	guard lock.Guard,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		rooms:     rooms,
		guard:     guard,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		tracer:    otel.Tracer(tracerName),
	}
}

// Create inserts booking if its room is free for the requested nights. The
// overlap check and the insert run inside the room lock and one transaction,
// so concurrent requests for the same room cannot both succeed.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (err error) {
	ctx, span := s.tracer.Start(ctx, "bookings.Create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.applyDefaults(booking)
	if err = s.sanitize(booking); err != nil {
		return err
	}
	if booking.Status == model.Cancelled {
		return apperrors.Validation("Booking validation failed", map[string]any{
			"Status": "new bookings must be pending or confirmed",
		})
	}

	iv, err := interval.Parse(booking.CheckIn, booking.CheckOut)
	if err != nil {
		return s.translateIntervalError(booking.CheckIn, booking.CheckOut, err)
	}
	booking.CheckIn = iv.StartISO()
	booking.CheckOut = iv.EndISO()

	roomID, err := model.ParseRoomID(booking.RoomID.String())
	if err != nil {
		return apperrors.InvalidID("Room", booking.RoomID.String())
	}
	booking.RoomID = roomID
	span.SetAttributes(
		attribute.String("room.id", roomID.String()),
		attribute.String("booking.check_in", booking.CheckIn),
		attribute.String("booking.check_out", booking.CheckOut),
	)

	if err = s.validate(booking); err != nil {
		return err
	}

	room, err := s.rooms.GetByID(ctx, roomID.String())
	if err != nil {
		return err
	}
	if booking.Guests > room.Capacity {
		return apperrors.Validation("Booking validation failed", map[string]any{
			"Guests":   "guests exceed room capacity",
			"capacity": room.Capacity,
		})
	}

	err = s.guard.WithRoomLock(ctx, roomID.String(), func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			overlap, err := s.repo.HasOverlap(txCtx, roomID, iv)
			if err != nil {
				return apperrors.Internal("Failed to check room availability", err)
			}
			if overlap {
				return apperrors.Conflict("Room not available for selected dates").WithDetails(map[string]any{
					"room_id":   roomID.String(),
					"check_in":  booking.CheckIn,
					"check_out": booking.CheckOut,
				})
			}
			if err := s.repo.Create(txCtx, booking); err != nil {
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
	})
	if err != nil {
		err = s.translateGuardError(err)
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.WithContext(ctx).Info("Booking rejected", "room_id", roomID, "interval", iv.String(), "reason", err.Error())
		} else {
			s.cfg.Log.WithContext(ctx).Error("Failed to create booking", "room_id", roomID, "interval", iv.String(), "error", err)
		}
		return err
	}

	s.publish(ctx, model.EventBookingCreated, booking)

	s.cfg.Log.WithContext(ctx).Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
		"nights", iv.Nights(),
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to get booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, email string) ([]*model.Booking, error) {
	email = sanitizer.NormalizeEmail(email)

	bookings, err := s.repo.FindAll(ctx, email)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list bookings", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// Cancel marks the booking cancelled and frees its nights. Cancelling an
// already cancelled booking returns it unchanged.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.Cancelled {
		return booking, nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.repo.UpdateStatus(ctx, id, model.Cancelled, now); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}
	booking.Status = model.Cancelled
	booking.CancelledAt = &now

	s.publish(ctx, model.EventBookingCancelled, booking)

	s.cfg.Log.WithContext(ctx).Info("Booking cancelled successfully", "id", id, "room_id", booking.RoomID)
	return booking, nil
}

func (s *bookingService) HasConflict(ctx context.Context, roomID model.RoomID, iv interval.Interval) (bool, error) {
	overlap, err := s.repo.HasOverlap(ctx, roomID, iv)
	if err != nil {
		return false, apperrors.Internal("Failed to check room availability", err)
	}
	return overlap, nil
}

func (s *bookingService) BookedRoomIDs(ctx context.Context, iv interval.Interval) ([]model.RoomID, error) {
	ids, err := s.repo.FindBookedRoomIDs(ctx, iv)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to query booked rooms", "interval", iv.String(), "error", err)
		return nil, apperrors.Internal("Failed to check room availability", err)
	}
	return ids, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.Confirmed
	}
	if b.Guests == 0 {
		b.Guests = model.DefaultGuests
	}
}

func (s *bookingService) sanitize(b *model.Booking) error {
	b.GuestName = sanitizer.NormalizeName(b.GuestName)
	b.Email = sanitizer.NormalizeEmail(b.Email)
	b.SpecialRequests = sanitizer.TrimAndNormalize(b.SpecialRequests)
	b.RoomID = model.RoomID(sanitizer.TrimAndNormalize(b.RoomID.String()))
	b.Status = model.BookingStatus(sanitizer.NormalizeLabel(string(b.Status)))

	if b.Phone != "" {
		phone := sanitizer.NormalizePhone(b.Phone, s.cfg.DefaultPhoneRegion)
		if phone == "" {
			return apperrors.Validation("Booking validation failed", map[string]any{
				"Phone": "Phone must be a valid phone number",
			})
		}
		b.Phone = phone
	}
	return nil
}

func (s *bookingService) validate(b *model.Booking) error {
	if err := s.validator.Validate(b); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Booking validation failed", verrs.Details())
		}
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) translateIntervalError(checkIn, checkOut string, err error) error {
	if errors.Is(err, interval.ErrInvalidRange) {
		return apperrors.InvalidRange(checkIn, checkOut)
	}
	return apperrors.Validation("Booking validation failed", map[string]any{
		"dates": err.Error(),
	})
}

func (s *bookingService) translateGuardError(err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, lock.ErrLockBusy):
		return apperrors.Conflict("Room is being booked by another request, please retry")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Timeout("Timed out while booking the room")
	default:
		return apperrors.Internal("Failed to create booking", err)
	}
}

// publish is best effort: the booking is already committed.
func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	if err := s.publisher.Publish(ctx, eventType, b); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}
