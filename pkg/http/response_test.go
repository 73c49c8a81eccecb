package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "laluna/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteError_AppErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid range", err: apperrors.InvalidRange("2024-06-05", "2024-06-01"), status: http.StatusBadRequest, code: apperrors.CodeInvalidRange},
		{name: "invalid id", err: apperrors.InvalidID("Room", "xyz"), status: http.StatusBadRequest, code: apperrors.CodeInvalidID},
		{name: "not found", err: apperrors.NotFound("Room"), status: http.StatusNotFound, code: apperrors.CodeNotFound},
		{name: "conflict", err: apperrors.Conflict("Room not available for selected dates"), status: http.StatusConflict, code: apperrors.CodeConflict},
		{name: "validation", err: apperrors.Validation("bad", nil), status: http.StatusUnprocessableEntity, code: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.New("connection refused: mongo-0:27017")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.Equal(t, apperrors.CodeInternal, resp.Code)
	assert.NotContains(t, rec.Body.String(), "mongo-0")
}

func TestWriteCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteCreated(rec, map[string]string{"id": "abc"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"id":"abc"}}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Sea View"}`))
	require.NoError(t, DecodeJSON(r, &target))
	assert.Equal(t, "Sea View", target.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err := DecodeJSON(r, &target)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err = DecodeJSON(r, &target)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	var target map[string]any
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	r.Body = http.MaxBytesReader(rec, r.Body, 16)

	err := DecodeJSON(r, &target)
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apperrors.AsAppError(err).StatusCode())
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?guests=3&bad=x", nil)

	v, err := QueryInt(r, "guests", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = QueryInt(r, "missing", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = QueryInt(r, "bad", 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
