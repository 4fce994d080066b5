package response

import (
	"errors"
	"net/http"
	"strings"
)

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError creates an error with the given status; code and message
// default to the status text.
func NewHTTPError(status int, message string) HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return HTTPError{
		Status:  status,
		Code:    codeFor(status),
		Message: message,
	}
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy of the error with an error cause.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

// StatusOf extracts the HTTP status from err. Any error in the chain that
// implements StatusCode() int wins; otherwise 500.
func StatusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// Predefined errors used by the router and the adapter.
var (
	ErrBadRequest            = NewHTTPError(http.StatusBadRequest, "")
	ErrUnauthorized          = NewHTTPError(http.StatusUnauthorized, "")
	ErrNotFound              = NewHTTPError(http.StatusNotFound, "")
	ErrMethodNotAllowed      = NewHTTPError(http.StatusMethodNotAllowed, "")
	ErrRequestEntityTooLarge = NewHTTPError(http.StatusRequestEntityTooLarge, "")
	ErrUnsupportedMediaType  = NewHTTPError(http.StatusUnsupportedMediaType, "")
	ErrInternalServerError   = NewHTTPError(http.StatusInternalServerError, "")
	ErrNotImplemented        = NewHTTPError(http.StatusNotImplemented, "")
)

// codeFor derives a machine-readable code from the status text,
// e.g. 413 -> "request_entity_too_large".
func codeFor(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ToLower(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
