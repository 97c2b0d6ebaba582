package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/philly/imageblog/internal/platform/apperror"
)

// Error messages written by middleware
const (
	MessageMissingToken  = "missing authentication token"
	MessageInvalidHeader = "invalid authorization header format"
	MessageInvalidToken  = "invalid authentication token"
	MessageTokenExpired  = "token has expired"
	MessageRateLimited   = "too many requests, please try again later"
)

// WriteJSONError writes a JSON error response with consistent format
// This matches the format used by BaseHandler in the REST layer
func WriteJSONError(w http.ResponseWriter, code apperror.ErrorCode, message string, status int) {
	WriteJSONErrorWithDetails(w, code, message, status, nil)
}

// WriteJSONErrorWithDetails writes a JSON error response with additional details
func WriteJSONErrorWithDetails(w http.ResponseWriter, code apperror.ErrorCode, message string, status int, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]any{
		"error":   code,
		"message": message,
	}

	// Add any additional details
	for k, v := range details {
		errorResp[k] = v
	}

	// Ignore encoding errors here as we're already in error handling
	_ = json.NewEncoder(w).Encode(errorResp)
}
