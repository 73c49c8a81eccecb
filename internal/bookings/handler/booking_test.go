package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "laluna/pkg/errors"
	"laluna/pkg/interval"
	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookingService struct {
	createErr error
	listEmail string
	bookings  map[string]*model.Booking
}

func (s *stubBookingService) Create(_ context.Context, b *model.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	b.ID = "665f1c2e8b3a4d5e6f7081aa"
	b.Status = model.Confirmed
	return nil
}

func (s *stubBookingService) GetByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return b, nil
}

func (s *stubBookingService) List(_ context.Context, email string) ([]*model.Booking, error) {
	s.listEmail = email
	result := []*model.Booking{}
	for _, b := range s.bookings {
		result = append(result, b)
	}
	return result, nil
}

func (s *stubBookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = model.Cancelled
	return b, nil
}

func (s *stubBookingService) HasConflict(context.Context, model.RoomID, interval.Interval) (bool, error) {
	return false, nil
}

func (s *stubBookingService) BookedRoomIDs(context.Context, interval.Interval) ([]model.RoomID, error) {
	return nil, nil
}

func serve(svc *stubBookingService, method, target, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBookingHandler_Create(t *testing.T) {
	body := `{"room_id":"665f1c2e8b3a4d5e6f708192","guest_name":"Ana Ruiz","email":"ana@example.com","check_in":"2024-06-01","check_out":"2024-06-05"}`
	rec := serve(&stubBookingService{}, http.MethodPost, "/api/v1/bookings", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "665f1c2e8b3a4d5e6f7081aa", resp.Data.ID)
	assert.Equal(t, model.Confirmed, resp.Data.Status)
}

func TestBookingHandler_Create_ErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "conflict", err: apperrors.Conflict("Room not available for selected dates"), status: http.StatusConflict, code: apperrors.CodeConflict},
		{name: "invalid range", err: apperrors.InvalidRange("2024-06-05", "2024-06-01"), status: http.StatusBadRequest, code: apperrors.CodeInvalidRange},
		{name: "invalid id", err: apperrors.InvalidID("Room", "x"), status: http.StatusBadRequest, code: apperrors.CodeInvalidID},
		{name: "room not found", err: apperrors.NotFoundWithID("Room", "665f1c2e8b3a4d5e6f708199"), status: http.StatusNotFound, code: apperrors.CodeNotFound},
		{name: "validation", err: apperrors.Validation("Booking validation failed", nil), status: http.StatusUnprocessableEntity, code: apperrors.CodeValidation},
		{name: "internal", err: apperrors.Internal("Failed to create booking", nil), status: http.StatusInternalServerError, code: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubBookingService{createErr: tt.err}, http.MethodPost, "/api/v1/bookings", `{"room_id":"x"}`)

			assert.Equal(t, tt.status, rec.Code)
			var resp struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestBookingHandler_ListPassesEmail(t *testing.T) {
	svc := &stubBookingService{bookings: map[string]*model.Booking{
		"665f1c2e8b3a4d5e6f7081aa": {ID: "665f1c2e8b3a4d5e6f7081aa", Email: "ana@example.com"},
	}}

	rec := serve(svc, http.MethodGet, "/api/v1/bookings?email=ana@example.com", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana@example.com", svc.listEmail)
	assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
}

func TestBookingHandler_GetAndCancel(t *testing.T) {
	svc := &stubBookingService{bookings: map[string]*model.Booking{
		"665f1c2e8b3a4d5e6f7081aa": {ID: "665f1c2e8b3a4d5e6f7081aa", Status: model.Confirmed},
	}}

	rec := serve(svc, http.MethodGet, "/api/v1/bookings/id/665f1c2e8b3a4d5e6f7081aa", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(svc, http.MethodPost, "/api/v1/bookings/id/665f1c2e8b3a4d5e6f7081aa/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)

	rec = serve(svc, http.MethodPost, "/api/v1/bookings/id/665f1c2e8b3a4d5e6f7081bb/cancel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
