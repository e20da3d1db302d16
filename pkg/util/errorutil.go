package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError standardizes errors surfaced by the portal backend.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError constructs an APIError.
func NewAPIError(code, message string, status int, details map[string]any) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewAPIError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewAPIError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewAPIError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewAPIError("CONFLICT", message, http.StatusConflict, details)
}

func NewCSRFRejected(message string) error {
	return NewAPIError("CSRF_VALIDATION_FAILED", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NetworkError wraps transport-level failures (DNS, refused, timeout) so they
// stay distinguishable from backend rejections.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorEnvelope mirrors the backend error body: {"error": {"code", "message", "details"}}.
type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// DecodeAPIError builds an APIError from a non-2xx response body. Bodies that
// do not match the envelope still yield a usable error carrying the status.
func DecodeAPIError(status int, body []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return &APIError{
			Code:       env.Error.Code,
			Message:    env.Error.Message,
			HTTPStatus: status,
			Details:    env.Error.Details,
		}
	}
	return &APIError{
		Code:       "HTTP_ERROR",
		Message:    strings.TrimSpace(string(body)),
		HTTPStatus: status,
	}
}

// ToAPIError converts generic errors to APIError.
func ToAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// AsAPIError unwraps err to an APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCSRFRejection reports whether the error text identifies a CSRF validation
// failure. The backend signals this through the message rather than a
// dedicated status, so matching is textual.
func IsCSRFRejection(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		if apiErr.Code == "CSRF_VALIDATION_FAILED" {
			return true
		}
		return containsCSRF(apiErr.Message)
	}
	return containsCSRF(err.Error())
}

func containsCSRF(s string) bool {
	return strings.Contains(strings.ToLower(s), "csrf")
}
