//go:build integration

package reservations

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/pkg/client"
	"laluna/pkg/model"
)

var api *client.ReservationsClient

func TestMain(m *testing.M) {
	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	api = client.NewReservationsClient(serverURL)

	if err := api.HTTP().WaitForHealthy(context.Background(), 30*time.Second); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// stay returns a date window far enough in the future that runs never collide.
func stay(offsetDays, nights int) (string, string) {
	base := time.Now().UTC().AddDate(2, 0, offsetDays)
	return base.Format(time.DateOnly), base.AddDate(0, 0, nights).Format(time.DateOnly)
}

func createRoom(t *testing.T, capacity int) *model.Room {
	t.Helper()
	room, err := api.CreateRoom(context.Background(), &model.Room{
		Name:          "Integration " + uuid.NewString()[:8],
		RoomType:      "Suite",
		Beds:          1,
		Capacity:      capacity,
		PricePerNight: 180,
	})
	require.NoError(t, err)
	require.NotEmpty(t, room.ID)
	return room
}

func booking(roomID, checkIn, checkOut string) *model.Booking {
	return &model.Booking{
		RoomID:    model.RoomID(roomID),
		GuestName: "Integration Guest",
		Email:     "guest-" + uuid.NewString()[:8] + "@example.com",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    2,
	}
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Code
}

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	room := createRoom(t, 2)
	checkIn, checkOut := stay(0, 4)

	created, err := api.CreateBooking(ctx, booking(room.ID, checkIn, checkOut), "")
	require.NoError(t, err)
	assert.Equal(t, model.Confirmed, created.Status)

	_, err = api.CreateBooking(ctx, booking(room.ID, checkIn, checkOut), "")
	assert.Equal(t, "CONFLICT", apiCode(t, err))

	// Back-to-back stays share a boundary day.
	_, nextOut := stay(4, 2)
	_, err = api.CreateBooking(ctx, booking(room.ID, checkOut, nextOut), "")
	require.NoError(t, err)

	available, err := api.CheckAvailability(ctx, model.AvailabilityRequest{CheckIn: checkIn, CheckOut: checkOut, Guests: 2})
	require.NoError(t, err)
	for _, r := range available {
		assert.NotEqual(t, room.ID, r.ID)
	}

	cancelled, err := api.CancelBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cancelled, cancelled.Status)

	_, err = api.CreateBooking(ctx, booking(room.ID, checkIn, checkOut), "")
	require.NoError(t, err)
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	room := createRoom(t, 2)
	checkIn, checkOut := stay(30, 3)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		codes     []string
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := api.CreateBooking(context.Background(), booking(room.ID, checkIn, checkOut), "")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var apiErr *client.APIError
			if assert.ErrorAs(t, err, &apiErr) {
				codes = append(codes, apiErr.Code)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	for _, code := range codes {
		assert.Equal(t, "CONFLICT", code)
	}
}

func TestIdempotentCreateReplays(t *testing.T) {
	ctx := context.Background()
	room := createRoom(t, 2)
	checkIn, checkOut := stay(60, 2)
	req := booking(room.ID, checkIn, checkOut)
	key := uuid.NewString()

	first, err := api.CreateBooking(ctx, req, key)
	require.NoError(t, err)

	second, err := api.CreateBooking(ctx, req, key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestRejections(t *testing.T) {
	ctx := context.Background()
	room := createRoom(t, 2)
	checkIn, checkOut := stay(90, 2)

	_, err := api.CreateBooking(ctx, booking(room.ID, checkOut, checkIn), "")
	assert.Equal(t, "INVALID_RANGE", apiCode(t, err))

	_, err = api.CreateBooking(ctx, booking("not-an-id", checkIn, checkOut), "")
	assert.Equal(t, "INVALID_ID", apiCode(t, err))

	_, err = api.CreateBooking(ctx, booking("64b7f0c2a1b2c3d4e5f60718", checkIn, checkOut), "")
	assert.Equal(t, "NOT_FOUND", apiCode(t, err))

	crowded := booking(room.ID, checkIn, checkOut)
	crowded.Guests = 3
	_, err = api.CreateBooking(ctx, crowded, "")
	assert.Equal(t, "VALIDATION_ERROR", apiCode(t, err))

	resp, err := api.HTTP().GET(ctx, "/api/v1/bookings/id/not-an-id")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
