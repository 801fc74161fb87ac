package apperrors

import (
	"errors"
	"net/http"
)

// APIError is the wire-level error envelope returned by handlers.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ToHTTPError converts an application error into an API error with the
// appropriate HTTP status.
func ToHTTPError(err error) *APIError {
	if err == nil {
		return nil
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		return &APIError{
			HTTPStatus: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "An unexpected error occurred",
		}
	}

	switch appErr.Kind {
	case KindInvalidInput:
		return &APIError{
			HTTPStatus: http.StatusBadRequest,
			Code:       "INVALID_INPUT",
			Message:    appErr.Message,
		}

	case KindNotFound:
		return &APIError{
			HTTPStatus: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    appErr.Message,
		}

	case KindConflict:
		return &APIError{
			HTTPStatus: http.StatusConflict,
			Code:       "CONFLICT",
			Message:    appErr.Message,
		}

	case KindUnavailable:
		return &APIError{
			HTTPStatus: http.StatusServiceUnavailable,
			Code:       "SERVICE_UNAVAILABLE",
			Message:    "Service temporarily unavailable",
		}

	default:
		return &APIError{
			HTTPStatus: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "An unexpected error occurred",
		}
	}
}
