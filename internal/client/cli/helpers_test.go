package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
	"github.com/dmitrijs2005/apexclient/internal/client/credentials"
	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/apexclient/internal/client/services"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

// captureOutput redirects printlnFn into a buffer for the test's lifetime.
func captureOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var (
		mu  sync.Mutex
		buf strings.Builder
	)
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Fprintln(&buf, a...)
	}
	t.Cleanup(func() { printlnFn = orig })
	return &buf
}

// stubPrompts answers text prompts from answers in order and the password
// prompt with password.
func stubPrompts(t *testing.T, password string, answers ...string) {
	t.Helper()
	origST, origTD, origGP := getSimpleText, getTextWithDefault, getPassword
	next := func() string {
		if len(answers) == 0 {
			return ""
		}
		a := answers[0]
		answers = answers[1:]
		return a
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next(), nil }
	getTextWithDefault = func(_ *bufio.Reader, _ string, def string, _ io.Writer) (string, error) {
		if v := next(); v != "" {
			return v, nil
		}
		return def, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getTextWithDefault = origTD
		getPassword = origGP
	})
}

// fakeAPI is an in-memory client.Client. Like the HTTP client it clears
// stored credentials and fires the unauthorized event on a 401.
type fakeAPI struct {
	store *credentials.Store

	users      map[int64]models.User
	passwords  map[string]string
	token      string
	nextID     int64
	unauthAll  bool
	failUpdate error
	calls      []string
	lastUpdate models.UserUpdate
	listeners  []client.UnauthorizedFunc
}

func newFakeAPI(store *credentials.Store) *fakeAPI {
	return &fakeAPI{
		store: store,
		users: map[int64]models.User{
			1: {ID: 1, Username: "alice", Email: "alice@example.com", Role: "admin"},
			2: {ID: 2, Username: "bob", Email: "bob@example.com", Role: "user"},
		},
		passwords: map[string]string{"alice@example.com": "pw"},
		token:     "tok-alice",
		nextID:    2,
	}
}

func (f *fakeAPI) unauthorized(ctx context.Context, msg string) error {
	_ = f.store.Clear(ctx)
	for _, fn := range f.listeners {
		fn(ctx)
	}
	return &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: msg}
}

func (f *fakeAPI) authorized(ctx context.Context) bool {
	tok, _ := f.store.Token(ctx)
	return !f.unauthAll && tok == f.token
}

func (f *fakeAPI) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	if f.passwords[creds.Email] != creds.Password {
		return nil, f.unauthorized(ctx, "Invalid credentials")
	}
	return &models.AuthResponse{Token: f.token, User: f.users[1]}, nil
}

func (f *fakeAPI) Register(ctx context.Context, data models.RegisterData) (*models.RegisterResponse, error) {
	f.calls = append(f.calls, "register")
	for _, u := range f.users {
		if u.Email == data.Email {
			return nil, &client.HTTPError{StatusCode: http.StatusBadRequest, Message: "Email already in use"}
		}
	}
	f.nextID++
	id := f.nextID
	f.users[id] = models.User{ID: id, Username: data.Username, Email: data.Email, Role: "admin"}
	return &models.RegisterResponse{ID: id, Username: data.Username, Email: data.Email, Token: f.token}, nil
}

func (f *fakeAPI) GetMe(ctx context.Context) (*models.User, error) {
	f.calls = append(f.calls, "get_me")
	if !f.authorized(ctx) {
		return nil, f.unauthorized(ctx, "")
	}
	u := f.users[1]
	return &u, nil
}

func (f *fakeAPI) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	f.calls = append(f.calls, "update_user")
	f.lastUpdate = upd
	if !f.authorized(ctx) {
		return nil, f.unauthorized(ctx, "")
	}
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	u := upd.Apply(f.users[id])
	f.users[id] = u
	return &u, nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, id int64) error {
	f.calls = append(f.calls, "delete_user")
	if !f.authorized(ctx) {
		return f.unauthorized(ctx, "")
	}
	if _, ok := f.users[id]; !ok {
		return &client.HTTPError{StatusCode: http.StatusNotFound, Message: "User not found"}
	}
	delete(f.users, id)
	return nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]models.User, error) {
	f.calls = append(f.calls, "list_users")
	if !f.authorized(ctx) {
		return nil, f.unauthorized(ctx, "")
	}
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAPI) OnUnauthorized(fn client.UnauthorizedFunc) {
	f.listeners = append(f.listeners, fn)
}

type testApp struct {
	*App
	api  *fakeAPI
	repo *kvstore.MemoryRepository
	logs *observer.ObservedLogs
}

// newTestApp builds an App over real services, a memory store and fakeAPI.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	repo := kvstore.NewMemoryRepository()
	store := credentials.NewStore(repo)
	api := newFakeAPI(store)

	core, logs := observer.New(zapcore.DebugLevel)
	log := logging.NewZapLogger(zap.New(core))

	session := services.NewSessionService(api, store, log)
	users := services.NewUserService(api, session, log)
	a := newApp(api, session, users, log, strings.NewReader(""))
	return &testApp{App: a, api: api, repo: repo, logs: logs}
}

// signIn stores alice's credentials and restores the session.
func (ta *testApp) signIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, credentials.NewStore(ta.repo).Save(ctx, ta.api.token, ta.api.users[1]))
	ta.session.Restore(ctx)
	require.True(t, ta.isLoggedIn())
}

func credentialsSave(ta *testApp) error {
	return credentials.NewStore(ta.repo).Save(context.Background(), ta.api.token, ta.api.users[1])
}
