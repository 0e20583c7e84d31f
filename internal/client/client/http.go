package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/common"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

const (
	opLogin      = "login"
	opRegister   = "register"
	opGetMe      = "get_me"
	opUpdateUser = "update_user"
	opDeleteUser = "delete_user"
	opListUsers  = "list_users"
	opCustom     = "custom"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	log     logging.Logger
	metrics *Metrics

	mu        sync.RWMutex
	listeners []UnauthorizedFunc
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// NewHTTPClient returns a client for the API rooted at baseURL. Tokens are
// read from (and on 401 cleared in) tokens.
func NewHTTPClient(baseURL string, tokens TokenStore, opts ...Option) (*HTTPClient, error) {

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	if tokens == nil {
		return nil, errors.New("token store is required")
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// OnUnauthorized registers fn to be called on every 401 response.
func (c *HTTPClient) OnUnauthorized(fn UnauthorizedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *HTTPClient) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {

	var resp models.AuthResponse
	if err := c.do(ctx, opLogin, http.MethodPost, "/api/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, data models.RegisterData) (*models.RegisterResponse, error) {

	var resp models.RegisterResponse
	if err := c.do(ctx, opRegister, http.MethodPost, "/api/auth/register", data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetMe(ctx context.Context) (*models.User, error) {

	var u models.User
	if err := c.do(ctx, opGetMe, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {

	var u models.User
	if err := c.do(ctx, opUpdateUser, http.MethodPut, userPath(id), upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, opDeleteUser, http.MethodDelete, userPath(id), nil, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {

	var users []models.User
	if err := c.do(ctx, opListUsers, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Do sends an arbitrary request through the same pipeline as the typed
// operations: token injection, 401 handling and error mapping. body is
// JSON-encoded when non-nil; out, when non-nil, receives the decoded
// response body.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, opCustom, method, path, body, out)
}

func userPath(id int64) string {
	return "/api/users/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	reqID := req.Header.Get(common.RequestIDHeader)
	log := c.log.With("op", op, "method", method, "path", path, "request_id", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "error", start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		log.Warn(ctx, "request failed", "error", err)
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(op, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w: %w", method, path, ErrUnavailable, err)
	}
	log.Debug(ctx, "response received", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, log)
		return newHTTPError(method, path, resp.StatusCode, data)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, uuid.NewString())

	// A token that cannot be read is treated as absent.
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "read stored token", "error", err)
		token = ""
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}
	return req, nil
}

func (c *HTTPClient) handleUnauthorized(ctx context.Context, log logging.Logger) {

	if c.metrics != nil {
		c.metrics.unauthorized.Inc()
	}
	if err := c.tokens.Clear(ctx); err != nil {
		log.Error(ctx, "clear credentials after 401", "error", err)
	}
	log.Info(ctx, "session rejected by server")

	c.mu.RLock()
	listeners := append([]UnauthorizedFunc(nil), c.listeners...)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}

func (c *HTTPClient) observe(op, code string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.requests.WithLabelValues(op, code).Inc()
	c.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

var _ Client = (*HTTPClient)(nil)
