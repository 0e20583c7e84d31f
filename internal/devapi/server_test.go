package devapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/devapi/config"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "adminpass"
	return cfg
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(testConfig(), logging.Nop(), bcrypt.MinCost)
	require.NoError(t, s.SeedAdmin(context.Background()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func message(t *testing.T, b []byte) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(b, &e))
	return e.Message
}

func login(t *testing.T, ts *httptest.Server, email, password string) models.AuthResponse {
	t.Helper()
	code, b := call(t, ts, http.MethodPost, "/api/auth/login", "", models.LoginCredentials{Email: email, Password: password})
	require.Equal(t, http.StatusOK, code, string(b))
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(b, &resp))
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	_, ts := newTestServer(t)

	code, b := call(t, ts, http.MethodPost, "/api/auth/register", "", models.RegisterData{
		Username: "bob", Email: "bob@example.com", Password: "bobpass",
	})
	require.Equal(t, http.StatusCreated, code, string(b))

	var reg models.RegisterResponse
	require.NoError(t, json.Unmarshal(b, &reg))
	assert.Equal(t, int64(2), reg.ID)
	assert.Equal(t, "bob", reg.Username)
	assert.NotEmpty(t, reg.Token)
	assert.NotContains(t, string(b), "role")

	code, b = call(t, ts, http.MethodGet, "/api/users/me", reg.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me models.User
	require.NoError(t, json.Unmarshal(b, &me))
	assert.Equal(t, models.User{ID: 2, Username: "bob", Email: "bob@example.com", Role: RoleUser}, me)

	auth := login(t, ts, "bob@example.com", "bobpass")
	assert.Equal(t, me, auth.User)
	assert.NotEmpty(t, auth.Token)
}

func TestRegister_Errors(t *testing.T) {
	_, ts := newTestServer(t)

	code, b := call(t, ts, http.MethodPost, "/api/auth/register", "", models.RegisterData{
		Username: "dup", Email: "ADMIN@example.com", Password: "password",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already in use", message(t, b))

	code, b = call(t, ts, http.MethodPost, "/api/auth/register", "", models.RegisterData{
		Username: "ab", Email: "nope", Password: "password",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "username must be at least 3 characters, email must be a valid email", message(t, b))

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/auth/register", strings.NewReader("{"))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, ts := newTestServer(t)

	code, b := call(t, ts, http.MethodPost, "/api/auth/login", "", models.LoginCredentials{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", message(t, b))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s, ts := newTestServer(t)

	expired, err := GenerateToken(1, []byte(s.cfg.SecretKey), -1)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", expired} {
		code, b := call(t, ts, http.MethodGet, "/api/users", tok, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.NotEmpty(t, message(t, b))
	}
}

func TestUpdateAndDelete_Authorization(t *testing.T) {
	s, ts := newTestServer(t)

	_, err := s.Users().Create("bob", "bob@example.com", "bobpass", RoleUser)
	require.NoError(t, err)
	_, err = s.Users().Create("carol", "carol@example.com", "carolpass", RoleUser)
	require.NoError(t, err)

	admin := login(t, ts, "admin@example.com", "adminpass").Token
	bob := login(t, ts, "bob@example.com", "bobpass").Token

	name := "bobby"
	code, b := call(t, ts, http.MethodPut, "/api/users/2", bob, models.UserUpdate{Username: &name})
	require.Equal(t, http.StatusOK, code, string(b))
	var u models.User
	require.NoError(t, json.Unmarshal(b, &u))
	assert.Equal(t, "bobby", u.Username)
	assert.Equal(t, "bob@example.com", u.Email)

	// unchanged role is accepted, a new one is not
	role := RoleUser
	code, _ = call(t, ts, http.MethodPut, "/api/users/2", bob, models.UserUpdate{Role: &role})
	assert.Equal(t, http.StatusOK, code)
	role = RoleAdmin
	code, b = call(t, ts, http.MethodPut, "/api/users/2", bob, models.UserUpdate{Role: &role})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only admins can change roles", message(t, b))

	code, _ = call(t, ts, http.MethodPut, "/api/users/3", bob, models.UserUpdate{Username: &name})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, ts, http.MethodDelete, "/api/users/3", bob, nil)
	assert.Equal(t, http.StatusForbidden, code)

	taken := "carol@example.com"
	code, b = call(t, ts, http.MethodPut, "/api/users/2", bob, models.UserUpdate{Email: &taken})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already in use", message(t, b))

	code, b = call(t, ts, http.MethodPut, "/api/users/2", bob, models.UserUpdate{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No fields to update", message(t, b))

	code, _ = call(t, ts, http.MethodPut, "/api/users/abc", admin, models.UserUpdate{Username: &name})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, ts, http.MethodPut, "/api/users/3", admin, models.UserUpdate{Role: &role})
	assert.Equal(t, http.StatusOK, code)

	code, b = call(t, ts, http.MethodDelete, "/api/users/3", admin, nil)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, b)
	code, _ = call(t, ts, http.MethodDelete, "/api/users/3", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// deleting yourself kills your token
	code, _ = call(t, ts, http.MethodDelete, "/api/users/2", bob, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = call(t, ts, http.MethodGet, "/api/users/me", bob, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, b = call(t, ts, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var all []models.User
	require.NoError(t, json.Unmarshal(b, &all))
	require.Len(t, all, 1)
	assert.Equal(t, RoleAdmin, all[0].Role)
}

func TestMetricsAndNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	code, b := call(t, ts, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(b), "go_goroutines")

	code, b = call(t, ts, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not found", message(t, b))
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "127.0.0.1:0"
	s := NewServer(cfg, logging.Nop(), bcrypt.MinCost)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
