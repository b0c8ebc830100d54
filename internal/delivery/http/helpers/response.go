package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest              = "bad_request"
	ErrCodeUnauthorized            = "unauthorized"
	ErrCodeForbidden               = "forbidden"
	ErrCodeNotFound                = "not_found"
	ErrCodeClosed                  = "closed"
	ErrCodeAlreadyRegistered       = "already_registered"
	ErrCodeFull                    = "full"
	ErrCodeNotRegistered           = "not_registered"
	ErrCodeConflict                = "conflict"
	ErrCodeCapacityBelowRegistered = "capacity_below_registered"
	ErrCodeInternalError           = "internal_error"
	ErrCodeUnavailable             = "unavailable"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess writes statusCode and an APIResponse carrying data with a nil error.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError writes statusCode and an APIResponse carrying the error code and message
// with nil data.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
