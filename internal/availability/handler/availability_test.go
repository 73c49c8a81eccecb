package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "laluna/pkg/errors"
	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type stubAvailability struct {
	gotGuests int
}

func (s *stubAvailability) FindAvailable(_ context.Context, checkIn, checkOut string, guests int) ([]*model.Room, error) {
	s.gotGuests = guests
	if checkOut <= checkIn {
		return nil, apperrors.InvalidRange(checkIn, checkOut)
	}
	return []*model.Room{{ID: "665f1c2e8b3a4d5e6f708192", Name: "Room A", Capacity: 2}}, nil
}

func serve(svc *stubAvailability, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewAvailabilityHandler(svc, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/availability", strings.NewReader(body)))
	return rec
}

func TestAvailabilityHandler_Check(t *testing.T) {
	svc := &stubAvailability{}
	rec := serve(svc, `{"check_in":"2024-06-01","check_out":"2024-06-05","guests":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.gotGuests)
	assert.Contains(t, rec.Body.String(), `"name":"Room A"`)
}

func TestAvailabilityHandler_InvalidRange(t *testing.T) {
	rec := serve(&stubAvailability{}, `{"check_in":"2024-06-05","check_out":"2024-06-01"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INVALID_RANGE"`)
}

func TestAvailabilityHandler_EmptyBody(t *testing.T) {
	rec := serve(&stubAvailability{}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body is empty")
}
