package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventhub/internal/domain"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorMappings is checked in order with errors.Is. Messages are fixed so clients
// branch on code, never on text.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "event not found"},
	{domain.ErrNotRegistered, http.StatusNotFound, ErrCodeNotRegistered, "not registered for this event"},
	{domain.ErrClosed, http.StatusConflict, ErrCodeClosed, "registration is closed, the event has already started"},
	{domain.ErrAlreadyRegistered, http.StatusConflict, ErrCodeAlreadyRegistered, "already registered for this event"},
	{domain.ErrFull, http.StatusConflict, ErrCodeFull, "event is full"},
	{domain.ErrCapacityBelowRegistered, http.StatusConflict, ErrCodeCapacityBelowRegistered, "capacity cannot be lower than the number of registrations"},
	{domain.ErrDuplicateEmail, http.StatusConflict, ErrCodeConflict, "email already in use"},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden, "forbidden"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password"},
	{domain.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound, "user not found"},
}

// ErrorStatus maps a service error to its HTTP status and error code. Unclassified
// errors map to 500 internal_error.
func ErrorStatus(err error) (status int, code, message string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
}

// WriteServiceError writes the mapped error response. 500s are logged with the request context.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, message := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	WriteJSONError(w, status, code, message)
}
