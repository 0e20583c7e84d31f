// Package credentials persists the bearer token and a serialized copy of the
// current user in durable storage, under the fixed keys common.AuthTokenKey
// and common.UserKey. Both keys are written and cleared in one storage call.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/apexclient/internal/common"
)

type Store struct {
	repo kvstore.Repository
}

func NewStore(repo kvstore.Repository) *Store {
	return &Store{repo: repo}
}

// Token returns the stored bearer token, or "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	b, err := s.repo.Get(ctx, common.AuthTokenKey)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// User returns the cached user, or nil when absent.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	b, err := s.repo.Get(ctx, common.UserKey)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

// Load returns both persisted values. ok is true only when a token and a
// decodable user are both present.
func (s *Store) Load(ctx context.Context) (token string, user *models.User, ok bool, err error) {
	token, err = s.Token(ctx)
	if err != nil {
		return "", nil, false, err
	}
	user, err = s.User(ctx)
	if err != nil {
		return token, nil, false, err
	}
	return token, user, token != "" && user != nil, nil
}

// Save writes the token and user together.
func (s *Store) Save(ctx context.Context, token string, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.repo.SetMany(ctx, map[string][]byte{
		common.AuthTokenKey: []byte(token),
		common.UserKey:      b,
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// SaveUser refreshes the serialized user, leaving the token untouched.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, common.UserKey, b); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Clear removes both keys. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.DeleteMany(ctx, common.AuthTokenKey, common.UserKey); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
