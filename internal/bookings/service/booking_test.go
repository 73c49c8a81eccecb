package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "laluna/internal/bookings/errors"
	"laluna/internal/bookings/validator"
	"laluna/pkg/config"
	mongotx "laluna/pkg/db/mongo"
	apperrors "laluna/pkg/errors"
	"laluna/pkg/interval"
	"laluna/pkg/lock"
	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	roomA = "665f1c2e8b3a4d5e6f708192"
	roomB = "665f1c2e8b3a4d5e6f708193"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type memoryBookingRepository struct {
	mu       sync.Mutex
	bookings []*model.Booking

	// overlapDelay widens the gap between the overlap check and the insert.
	overlapDelay time.Duration
	overlapErr   error
}

func (m *memoryBookingRepository) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = primitive.NewObjectID().Hex()
	b.CreatedAt = time.Now().UTC()
	cp := *b
	m.bookings = append(m.bookings, &cp)
	return nil
}

func (m *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (m *memoryBookingRepository) FindAll(_ context.Context, email string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*model.Booking{}
	for _, b := range m.bookings {
		if email == "" || b.Email == email {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *memoryBookingRepository) HasOverlap(_ context.Context, roomID model.RoomID, iv interval.Interval) (bool, error) {
	if m.overlapErr != nil {
		return false, m.overlapErr
	}
	overlap := m.overlapping(roomID, iv)
	if m.overlapDelay > 0 {
		time.Sleep(m.overlapDelay)
	}
	return overlap, nil
}

func (m *memoryBookingRepository) overlapping(roomID model.RoomID, iv interval.Interval) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.RoomID != roomID || !b.Blocking() {
			continue
		}
		existing, err := b.Interval()
		if err == nil && existing.Overlaps(iv) {
			return true
		}
	}
	return false
}

func (m *memoryBookingRepository) FindBookedRoomIDs(_ context.Context, iv interval.Interval) ([]model.RoomID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[model.RoomID]bool{}
	ids := []model.RoomID{}
	for _, b := range m.bookings {
		existing, err := b.Interval()
		if err != nil || !b.Blocking() || !existing.Overlaps(iv) || seen[b.RoomID] {
			continue
		}
		seen[b.RoomID] = true
		ids = append(ids, b.RoomID)
	}
	return ids, nil
}

func (m *memoryBookingRepository) UpdateStatus(_ context.Context, id string, status model.BookingStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			b.Status = status
			b.CancelledAt = &at
			return nil
		}
	}
	return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (m *memoryBookingRepository) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.bookings)), nil
}

func (m *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func (m *memoryBookingRepository) stored() []*model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Booking{}, m.bookings...)
}

type stubRoomCatalog map[string]*model.Room

func (c stubRoomCatalog) GetByID(_ context.Context, id string) (*model.Room, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperrors.InvalidID("Room", id)
	}
	room, ok := c[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Room", id)
	}
	return room, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, b *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+b.ID)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type busyGuard struct{}

func (busyGuard) WithRoomLock(context.Context, string, func(ctx context.Context) error) error {
	return fmt.Errorf("%w: room_lock_%s", lock.ErrLockBusy, roomA)
}

type fixture struct {
	svc       BookingService
	repo      *memoryBookingRepository
	publisher *recordingPublisher
}

func newFixture(t *testing.T, guard lock.Guard) *fixture {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{Log: log, DefaultPhoneRegion: "US"}
	repo := &memoryBookingRepository{}
	publisher := &recordingPublisher{}
	rooms := stubRoomCatalog{
		roomA: {ID: roomA, Name: "Room A", Capacity: 2},
		roomB: {ID: roomB, Name: "Room B", Capacity: 4},
	}
	if guard == nil {
		guard = lock.NewLocalGuard()
	}
	svc := NewBookingService(repo, rooms, guard, publisher, validator.NewBookingValidator(log), cfg)
	return &fixture{svc: svc, repo: repo, publisher: publisher}
}

func newBooking(roomID, checkIn, checkOut string) *model.Booking {
	return &model.Booking{
		RoomID:    model.RoomID(roomID),
		GuestName: "Ana Ruiz",
		Email:     "ana@example.com",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	}
}

// ────────────────────────────────────────────────
// Booking scenarios
// ────────────────────────────────────────────────

func TestCreate_OverlappingStayConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := newBooking(roomA, "2024-06-01", "2024-06-05")
	require.NoError(t, f.svc.Create(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, model.Confirmed, first.Status)
	assert.Equal(t, model.DefaultGuests, first.Guests)

	err := f.svc.Create(ctx, newBooking(roomA, "2024-06-03", "2024-06-07"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Len(t, f.repo.stored(), 1)
}

func TestCreate_AdjacentStaySucceeds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-06-01", "2024-06-05")))
	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-06-05", "2024-06-08")))
	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-05-28", "2024-06-01")))
	assert.Len(t, f.repo.stored(), 3)
}

func TestCreate_OtherRoomUnaffected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-06-01", "2024-06-05")))
	require.NoError(t, f.svc.Create(ctx, newBooking(roomB, "2024-06-01", "2024-06-05")))
}

func TestCancel_FreesInterval(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := newBooking(roomA, "2024-06-01", "2024-06-05")
	require.NoError(t, f.svc.Create(ctx, first))

	cancelled, err := f.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	again, err := f.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cancelled, again.Status)

	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-06-03", "2024-06-07")))
	assert.Equal(t, []string{
		model.EventBookingCreated + ":" + first.ID,
		model.EventBookingCancelled + ":" + first.ID,
	}, f.publisher.events[:2])
	assert.Len(t, f.publisher.events, 3)
}

func TestCreate_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.overlapDelay = 20 * time.Millisecond

	const attempts = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = f.svc.Create(context.Background(), newBooking(roomA, "2024-06-01", "2024-06-05"))
		}(i)
	}
	close(start)
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.HasCode(err, apperrors.CodeConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, f.repo.stored(), 1)
}

func TestCreate_ConcurrentRequestsAcrossGuards(t *testing.T) {
	// Two service instances sharing one store-backed guard behave like two
	// processes sharing the Room_locks collection.
	store := newSharedLockStore()
	storeGuard := lock.NewStoreGuard(store, lock.StoreConfig{
		TTL:           time.Second,
		WaitTimeout:   500 * time.Millisecond,
		RetryInterval: 5 * time.Millisecond,
	}, logger.Discard())

	f := newFixture(t, lock.Chain(lock.NewLocalGuard(), storeGuard))
	f.repo.overlapDelay = 10 * time.Millisecond
	log := logger.Discard()
	other := NewBookingService(f.repo, stubRoomCatalog{roomA: {ID: roomA, Capacity: 2}},
		lock.Chain(lock.NewLocalGuard(), storeGuard), nil, validator.NewBookingValidator(log),
		&config.Config{Log: log, DefaultPhoneRegion: "US"})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, svc := range []BookingService{f.svc, other} {
		wg.Add(1)
		go func(i int, svc BookingService) {
			defer wg.Done()
			errs[i] = svc.Create(context.Background(), newBooking(roomA, "2024-06-01", "2024-06-05"))
		}(i, svc)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error: %v", err)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Len(t, f.repo.stored(), 1)
}

func TestCreate_InvalidRangeMutatesNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, dates := range [][2]string{{"2024-06-05", "2024-06-01"}, {"2024-06-05", "2024-06-05"}} {
		err := f.svc.Create(ctx, newBooking(roomA, dates[0], dates[1]))
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidRange), "dates %v: %v", dates, err)
	}
	assert.Empty(t, f.repo.stored())
	assert.Empty(t, f.publisher.events)
}

// ────────────────────────────────────────────────
// Input handling
// ────────────────────────────────────────────────

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *model.Booking)
		code   string
	}{
		{name: "malformed date", mutate: func(b *model.Booking) { b.CheckIn = "June 1st" }, code: apperrors.CodeValidation},
		{name: "malformed room id", mutate: func(b *model.Booking) { b.RoomID = "room-a" }, code: apperrors.CodeInvalidID},
		{name: "unknown room", mutate: func(b *model.Booking) { b.RoomID = model.RoomID(primitive.NewObjectID().Hex()) }, code: apperrors.CodeNotFound},
		{name: "guests exceed capacity", mutate: func(b *model.Booking) { b.Guests = 3 }, code: apperrors.CodeValidation},
		{name: "cancelled on create", mutate: func(b *model.Booking) { b.Status = model.Cancelled }, code: apperrors.CodeValidation},
		{name: "unparseable phone", mutate: func(b *model.Booking) { b.Phone = "call me" }, code: apperrors.CodeValidation},
		{name: "bad email", mutate: func(b *model.Booking) { b.Email = "ana" }, code: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			b := newBooking(roomA, "2024-06-01", "2024-06-05")
			tt.mutate(b)

			err := f.svc.Create(context.Background(), b)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.AsAppError(err).Code, "error: %v", err)
			assert.Empty(t, f.repo.stored())
		})
	}
}

func TestCreate_NormalizesInput(t *testing.T) {
	f := newFixture(t, nil)

	b := newBooking(" 665F1C2E8B3A4D5E6F708192 ", "2024-06-01T15:00:00Z", "2024-06-05")
	b.Email = "  Ana@Example.COM "
	b.Phone = "(415) 555-2671"
	b.GuestName = "  Ana   Ruiz "
	b.Status = "Pending"
	require.NoError(t, f.svc.Create(context.Background(), b))

	assert.Equal(t, model.RoomID(roomA), b.RoomID)
	assert.Equal(t, "ana@example.com", b.Email)
	assert.Equal(t, "+14155552671", b.Phone)
	assert.Equal(t, "Ana Ruiz", b.GuestName)
	assert.Equal(t, "2024-06-01", b.CheckIn)
	assert.Equal(t, model.Pending, b.Status)
}

func TestCreate_LockBusyIsConflict(t *testing.T) {
	f := newFixture(t, busyGuard{})

	err := f.svc.Create(context.Background(), newBooking(roomA, "2024-06-01", "2024-06-05"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Contains(t, apperrors.AsAppError(err).Message, "retry")
}

func TestCreate_LockWaitTimesOut(t *testing.T) {
	f := newFixture(t, nil)
	guard := lock.NewLocalGuard()
	f.svc.(*bookingService).guard = guard

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = guard.WithRoomLock(context.Background(), roomA, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := f.svc.Create(ctx, newBooking(roomA, "2024-06-01", "2024-06-05"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTimeout))
}

func TestCreate_RepositoryFailureIsInternal(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.overlapErr = errors.New("connection reset")

	err := f.svc.Create(context.Background(), newBooking(roomA, "2024-06-01", "2024-06-05"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	assert.ErrorIs(t, err, f.repo.overlapErr)
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.err = errors.New("broker down")

	require.NoError(t, f.svc.Create(context.Background(), newBooking(roomA, "2024-06-01", "2024-06-05")))
	assert.Len(t, f.repo.stored(), 1)
}

// ────────────────────────────────────────────────
// Read paths
// ────────────────────────────────────────────────

func TestList_FiltersByNormalizedEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-06-01", "2024-06-05")))
	other := newBooking(roomB, "2024-06-01", "2024-06-05")
	other.Email = "bo@example.com"
	require.NoError(t, f.svc.Create(ctx, other))

	all, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, " BO@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.RoomID(roomB), mine[0].RoomID)

	again, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestGetByID_Errors(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GetByID(context.Background(), "xyz")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidID))

	_, err = f.svc.GetByID(context.Background(), primitive.NewObjectID().Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Cancel(context.Background(), primitive.NewObjectID().Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestHasConflictAndBookedRoomIDs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.Create(ctx, newBooking(roomA, "2024-06-01", "2024-06-05")))

	iv, err := interval.Parse("2024-06-04", "2024-06-06")
	require.NoError(t, err)

	conflict, err := f.svc.HasConflict(ctx, roomA, iv)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = f.svc.HasConflict(ctx, roomB, iv)
	require.NoError(t, err)
	assert.False(t, conflict)

	booked, err := f.svc.BookedRoomIDs(ctx, iv)
	require.NoError(t, err)
	assert.Equal(t, []model.RoomID{roomA}, booked)

	later, err := interval.Parse("2024-06-05", "2024-06-06")
	require.NoError(t, err)
	booked, err = f.svc.BookedRoomIDs(ctx, later)
	require.NoError(t, err)
	assert.Empty(t, booked)
}

// ────────────────────────────────────────────────
// Shared lock store
// ────────────────────────────────────────────────

type sharedLockStore struct {
	mu    sync.Mutex
	locks map[string]model.RoomLock
}

func newSharedLockStore() *sharedLockStore {
	return &sharedLockStore{locks: map[string]model.RoomLock{}}
}

func (s *sharedLockStore) Acquire(_ context.Context, l *model.RoomLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.locks[l.ID]; ok && existing.ExpiresAt.After(time.Now()) {
		return lock.ErrLockBusy
	}
	s.locks[l.ID] = *l
	return nil
}

func (s *sharedLockStore) Release(_ context.Context, id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.locks[id]; ok && existing.Owner == owner {
		delete(s.locks, id)
	}
	return nil
}
