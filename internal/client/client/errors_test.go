package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError_Error(t *testing.T) {
	e := newHTTPError(http.MethodPut, "/api/users/1", http.StatusBadRequest, []byte(`{"message":" Email already in use "}`))
	assert.Equal(t, "Email already in use", e.Message)
	assert.Equal(t, "PUT /api/users/1: 400 Bad Request: Email already in use", e.Error())

	e = newHTTPError(http.MethodGet, "/api/users", http.StatusBadGateway, []byte("<html>"))
	assert.Empty(t, e.Message)
	assert.Equal(t, "GET /api/users: 502 Bad Gateway", e.Error())
}

func TestHTTPError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load profile: %w", newHTTPError(http.MethodGet, "/api/users/me", http.StatusNotFound, nil))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Empty(t, ServerMessage(err))
}

func TestServerMessage(t *testing.T) {
	assert.Empty(t, ServerMessage(nil))
	assert.Empty(t, ServerMessage(errors.New("boom")))
	assert.Equal(t, "nope", ServerMessage(newHTTPError("GET", "/", 403, []byte(`{"error":"nope"}`))))
	// message wins over error
	assert.Equal(t, "a", ServerMessage(newHTTPError("GET", "/", 400, []byte(`{"message":"a","error":"b"}`))))
}
