package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

// UserService lists and deletes accounts on the server.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	// Delete removes the account; deleting the signed-in account logs out.
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	client  client.Client
	session SessionService
	log     logging.Logger
}

func NewUserService(c client.Client, session SessionService, log logging.Logger) UserService {
	return &userService{client: c, session: session, log: log}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {

	if err := s.client.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	if cur := s.session.Session(); cur.User != nil && cur.User.ID == id {
		s.log.Info(ctx, "current account deleted, logging out", "user_id", id)
		s.session.Logout(ctx)
	}
	return nil
}
