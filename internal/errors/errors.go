package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no session is active.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the session lacks the admin role.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidCSRFToken is returned when a form token is not in the
	// active set.
	ErrInvalidCSRFToken = errors.New("invalid csrf token")
	// ErrSessionExpired is returned when the session timed out from
	// inactivity.
	ErrSessionExpired = errors.New("session expired")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped sentinels
// map the same as bare ones.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidCSRFToken):
		return NewHTTPError(http.StatusForbidden, ErrInvalidCSRFToken.Error(), "INVALID_CSRF_TOKEN")
	case errors.Is(err, ErrSessionExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrSessionExpired.Error(), "SESSION_EXPIRED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
