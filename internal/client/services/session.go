// Package services contains application services for the profile client.
// This file defines the session service: restoring a persisted session at
// startup, login/register/logout, profile updates, and reacting to the
// transport's unauthorized event.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

// CredentialStore is the durable side of a session.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	Load(ctx context.Context) (token string, user *models.User, ok bool, err error)
	Save(ctx context.Context, token string, user models.User) error
	SaveUser(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

// SessionService owns the in-memory session record and keeps it in step with
// persisted credentials.
//
// Contract:
//   - Restore: run once at startup; ends in Authenticated or Anonymous.
//   - Login/Register: on success persist credentials and become Authenticated;
//     on failure the session is unchanged and the error is returned.
//   - Logout: always succeeds; clears storage and becomes Anonymous.
//   - UpdateUser: no-op when not authenticated.
//   - HandleUnauthorized: drops the user; storage is cleared by the transport.
type SessionService interface {
	Restore(ctx context.Context)
	Login(ctx context.Context, creds models.LoginCredentials) error
	Register(ctx context.Context, data models.RegisterData) error
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, upd models.UserUpdate) error
	HandleUnauthorized(ctx context.Context)
	TokenExpiry(ctx context.Context) (time.Time, bool)
	Session() models.Session
	Subscribe(fn func(models.Session)) (unsubscribe func())
}

type sessionService struct {
	client client.Client
	store  CredentialStore
	log    logging.Logger

	mu      sync.Mutex
	state   models.State
	user    *models.User
	nextSub int
	subs    map[int]func(models.Session)
}

// NewSessionService returns a session in the Unknown state. Call Restore
// before serving the user.
func NewSessionService(c client.Client, store CredentialStore, log logging.Logger) SessionService {
	return &sessionService{
		client: c,
		store:  store,
		log:    log,
		state:  models.StateUnknown,
		subs:   make(map[int]func(models.Session)),
	}
}

func (s *sessionService) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *sessionService) snapshot() models.Session {
	var u *models.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return models.Session{User: u, State: s.state}
}

func (s *sessionService) Subscribe(fn func(models.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// transition applies fn under the lock and notifies subscribers if the
// session changed.
func (s *sessionService) transition(fn func()) {

	s.mu.Lock()
	before := s.snapshot()
	fn()
	after := s.snapshot()
	subs := make([]func(models.Session), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	s.mu.Unlock()

	if sameSession(before, after) {
		return
	}
	for _, f := range subs {
		f(after)
	}
}

func sameSession(a, b models.Session) bool {
	if a.State != b.State {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == nil && b.User == nil
	}
	return *a.User == *b.User
}

func (s *sessionService) setAnonymous() {
	s.transition(func() {
		s.state = models.StateAnonymous
		s.user = nil
	})
}

func (s *sessionService) setAuthenticated(u models.User) {
	s.transition(func() {
		s.state = models.StateAuthenticated
		s.user = &u
	})
}

// Restore validates persisted credentials against the server. The fetched
// record replaces the cached copy in memory; the cached copy is not used.
func (s *sessionService) Restore(ctx context.Context) {

	s.transition(func() { s.state = models.StateRestoring })

	_, _, ok, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "stored session unreadable", "error", err)
	}
	if err != nil || !ok {
		// either nothing stored or a lone key left behind
		s.clearStorage(ctx)
		s.setAnonymous()
		return
	}

	u, err := s.client.GetMe(ctx)
	if err != nil {
		s.log.Info(ctx, "stored session rejected", "error", err)
		s.clearStorage(ctx)
		s.setAnonymous()
		return
	}

	s.log.Debug(ctx, "session restored", "user_id", u.ID)
	s.setAuthenticated(*u)
}

func (s *sessionService) Login(ctx context.Context, creds models.LoginCredentials) error {

	resp, err := s.client.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.store.Save(ctx, resp.Token, resp.User); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.log.Info(ctx, "logged in", "user_id", resp.User.ID)
	s.setAuthenticated(resp.User)
	return nil
}

// Register signs up and logs in. The persisted user gets the default role;
// the register response carries none.
func (s *sessionService) Register(ctx context.Context, data models.RegisterData) error {

	resp, err := s.client.Register(ctx, data)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	u := resp.User()
	if err := s.store.Save(ctx, resp.Token, u); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	s.log.Info(ctx, "registered", "user_id", u.ID)
	s.setAuthenticated(u)
	return nil
}

func (s *sessionService) Logout(ctx context.Context) {
	s.clearStorage(ctx)
	s.setAnonymous()
}

func (s *sessionService) clearStorage(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "clear stored session", "error", err)
	}
}

func (s *sessionService) UpdateUser(ctx context.Context, upd models.UserUpdate) error {

	cur := s.Session()
	if !cur.IsAuthenticated() {
		return nil
	}

	u, err := s.client.UpdateUser(ctx, cur.User.ID, upd)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	applied := false
	s.transition(func() {
		// the session may have ended while the request was in flight
		if s.state != models.StateAuthenticated || s.user == nil || s.user.ID != cur.User.ID {
			return
		}
		s.user = u
		applied = true
	})
	if !applied {
		return nil
	}

	if err := s.store.SaveUser(ctx, *u); err != nil {
		s.log.Warn(ctx, "persist updated user", "error", err)
	}
	return nil
}

func (s *sessionService) HandleUnauthorized(ctx context.Context) {
	s.log.Debug(ctx, "unauthorized event")
	s.transition(func() {
		s.user = nil
		if s.state != models.StateRestoring {
			s.state = models.StateAnonymous
		}
	})
}

// TokenExpiry reports the exp claim of the stored token, if it has one.
func (s *sessionService) TokenExpiry(ctx context.Context) (time.Time, bool) {
	tok, err := s.store.Token(ctx)
	if err != nil || tok == "" {
		return time.Time{}, false
	}
	return client.TokenExpiry(tok)
}
