package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
	"github.com/dmitrijs2005/apexclient/internal/client/credentials"
	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	LoginRet    *models.AuthResponse
	LoginErr    error
	RegisterRet *models.RegisterResponse
	RegisterErr error
	GetMeRet    *models.User
	GetMeErr    error
	UpdateRet   *models.User
	UpdateErr   error
	DeleteErr   error
	ListRet     []models.User
	ListErr     error

	// runs inside UpdateUser before it returns
	UpdateHook func(ctx context.Context)

	Calls      []string
	LastLogin  models.LoginCredentials
	LastUpdate models.UserUpdate
	LastID     int64
	listeners  []client.UnauthorizedFunc
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op)
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *fakeClient) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	f.record("login")
	f.LastLogin = creds
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, data models.RegisterData) (*models.RegisterResponse, error) {
	f.record("register")
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) GetMe(ctx context.Context) (*models.User, error) {
	f.record("get_me")
	if f.GetMeErr != nil {
		return nil, f.GetMeErr
	}
	u := *f.GetMeRet
	return &u, nil
}

func (f *fakeClient) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	f.record("update_user")
	f.LastID = id
	f.LastUpdate = upd
	if f.UpdateHook != nil {
		f.UpdateHook(ctx)
	}
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	u := *f.UpdateRet
	return &u, nil
}

func (f *fakeClient) DeleteUser(ctx context.Context, id int64) error {
	f.record("delete_user")
	f.LastID = id
	return f.DeleteErr
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.User, error) {
	f.record("list_users")
	return f.ListRet, f.ListErr
}

func (f *fakeClient) OnUnauthorized(fn client.UnauthorizedFunc) {
	f.listeners = append(f.listeners, fn)
}

// ---- store helpers ----

func newStore() (*credentials.Store, *kvstore.MemoryRepository) {
	repo := kvstore.NewMemoryRepository()
	return credentials.NewStore(repo), repo
}

// brokenStore fails every write.
type brokenStore struct {
	*credentials.Store
}

var errDisk = errors.New("disk full")

func (b brokenStore) Save(context.Context, string, models.User) error { return errDisk }
func (b brokenStore) SaveUser(context.Context, models.User) error     { return errDisk }
func (b brokenStore) Clear(context.Context) error                     { return errDisk }
