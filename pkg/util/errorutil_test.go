package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAPIError(t *testing.T) {
	body := []byte(`{"error": {"code": "VALIDATION_FAILED", "message": "subject required", "details": {"field": "subject"}}}`)

	apiErr := DecodeAPIError(http.StatusBadRequest, body)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)
	assert.Equal(t, "subject required", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	assert.Equal(t, "subject", apiErr.Details["field"])
}

func TestDecodeAPIErrorNonEnvelopeBody(t *testing.T) {
	apiErr := DecodeAPIError(http.StatusBadGateway, []byte("upstream unavailable\n"))
	assert.Equal(t, "HTTP_ERROR", apiErr.Code)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus)
}

func TestIsCSRFRejection(t *testing.T) {
	assert.True(t, IsCSRFRejection(NewCSRFRejected("CSRF token validation failed")))
	assert.True(t, IsCSRFRejection(NewAPIError("FORBIDDEN", "csrf token mismatch", http.StatusForbidden, nil)),
		"message matching is case-insensitive")
	assert.True(t, IsCSRFRejection(errors.New("backend said: Csrf check failed")))

	assert.False(t, IsCSRFRejection(nil))
	assert.False(t, IsCSRFRejection(NewUnauthorized("token expired")))
	assert.False(t, IsCSRFRejection(errors.New("connection refused")))
}

func TestAsAPIErrorUnwraps(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), NewNotFound("complaint", nil))

	apiErr, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestNetworkErrorUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &NetworkError{Op: "GET /complaints", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "GET /complaints")
}
