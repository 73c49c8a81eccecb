package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"laluna/pkg/model"
)

const IdempotencyHeader = "Idempotency-Key"

// ReservationsClient is a typed client for the reservations HTTP API.
type ReservationsClient struct {
	httpClient *HttpClient
}

func NewReservationsClient(baseURL string) *ReservationsClient {
	return &ReservationsClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *ReservationsClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *ReservationsClient) CreateRoom(ctx context.Context, room *model.Room) (*model.Room, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/rooms", room)
	if err != nil {
		return nil, err
	}
	var created model.Room
	if err := decodeData(resp, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *ReservationsClient) ListRooms(ctx context.Context) ([]*model.Room, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/rooms")
	if err != nil {
		return nil, err
	}
	var rooms []*model.Room
	if err := decodeData(resp, http.StatusOK, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *ReservationsClient) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/rooms/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := decodeData(resp, http.StatusOK, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *ReservationsClient) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) ([]*model.Room, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/availability", req)
	if err != nil {
		return nil, err
	}
	var rooms []*model.Room
	if err := decodeData(resp, http.StatusOK, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateBooking submits a booking. A non-empty idempotencyKey makes retries
// of the same request replay the first successful response.
func (c *ReservationsClient) CreateBooking(ctx context.Context, booking *model.Booking, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{IdempotencyHeader: idempotencyKey}
	}

	resp, err := c.httpClient.POSTWithHeaders(ctx, "/api/v1/bookings", booking, headers)
	if err != nil {
		return nil, err
	}
	var created model.Booking
	if err := decodeData(resp, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *ReservationsClient) ListBookings(ctx context.Context, email string) ([]*model.Booking, error) {
	path := "/api/v1/bookings"
	if email != "" {
		path += "?" + url.Values{"email": []string{email}}.Encode()
	}

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var bookings []*model.Booking
	if err := decodeData(resp, http.StatusOK, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *ReservationsClient) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *ReservationsClient) CancelBooking(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", struct{}{})
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func decodeData(resp *Response, wantStatus int, target any) error {
	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper: %s: %w", resp.ToString(), err)
	}
	if len(wrapper.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data: %s: %w", resp.ToString(), err)
	}
	return nil
}
