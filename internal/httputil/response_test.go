package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/petcare/rfid-gateway/internal/errors"
)

func TestWriteError(t *testing.T) {
	t.Run("maps AppError code to status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.Conflict("Tag already in use"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Tag already in use", body.Error)
		assert.Equal(t, apperrors.ErrCodeConflict, body.Code)
	})

	t.Run("hides unknown errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})
}

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code   apperrors.ErrorCode
		status int
	}{
		{apperrors.ErrCodeMissingRequired, http.StatusBadRequest},
		{apperrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeInvalidState, http.StatusConflict},
		{apperrors.ErrCodeNoActivePairing, http.StatusConflict},
		{apperrors.ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{apperrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{apperrors.ErrCodeExternal, http.StatusBadGateway},
		{apperrors.ErrCodeDatabase, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.status, StatusFromCode(tc.code))
		})
	}
}
