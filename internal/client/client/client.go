package client

import (
	"context"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
)

// Client is the remote API contract.
type Client interface {
	Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error)
	Register(ctx context.Context, data models.RegisterData) (*models.RegisterResponse, error)
	GetMe(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
	OnUnauthorized(fn UnauthorizedFunc)
}

// UnauthorizedFunc is called after a 401 response, once stored credentials
// have been cleared and before the error reaches the caller.
type UnauthorizedFunc func(ctx context.Context)

// TokenStore is the slice of durable credential storage the transport needs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
