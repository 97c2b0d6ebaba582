package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/philly/imageblog/internal/platform/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONError(t *testing.T) {
	tests := []struct {
		name         string
		code         apperror.ErrorCode
		message      string
		status       int
		expectedBody map[string]any
	}{
		{
			name:    "writes unauthorized error",
			code:    apperror.CodeUnauthorized,
			message: MessageMissingToken,
			status:  http.StatusUnauthorized,
			expectedBody: map[string]any{
				"error":   "UNAUTHORIZED",
				"message": "missing authentication token",
			},
		},
		{
			name:    "writes rate limited error",
			code:    apperror.CodeRateLimited,
			message: MessageRateLimited,
			status:  http.StatusTooManyRequests,
			expectedBody: map[string]any{
				"error":   "RATE_LIMITED",
				"message": "too many requests, please try again later",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			WriteJSONError(rec, tt.code, tt.message, tt.status)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}

func TestWriteJSONErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSONErrorWithDetails(rec, apperror.CodeRateLimited, MessageRateLimited, http.StatusTooManyRequests,
		map[string]any{"retry_after_seconds": 1})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body["error"])
	assert.Equal(t, float64(1), body["retry_after_seconds"])
}
