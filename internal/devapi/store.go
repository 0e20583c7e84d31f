package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type account struct {
	user models.User
	hash []byte
}

// UserStore keeps accounts in memory, keyed by id. Emails are unique
// case-insensitively.
type UserStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]*account
	cost     int
}

// NewUserStore creates an empty store hashing passwords at the given bcrypt
// cost; zero selects bcrypt.DefaultCost.
func NewUserStore(cost int) *UserStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserStore{accounts: make(map[int64]*account), cost: cost}
}

func (s *UserStore) Create(username, email, password, role string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(email, 0) {
		return models.User{}, ErrEmailTaken
	}
	s.nextID++
	u := models.User{ID: s.nextID, Username: username, Email: email, Role: role}
	s.accounts[u.ID] = &account{user: u, hash: hash}
	return u, nil
}

// Authenticate returns the user whose email and password match.
func (s *UserStore) Authenticate(email, password string) (models.User, error) {
	s.mu.RLock()
	var found *account
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			found = a
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.hash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return found.user, nil
}

func (s *UserStore) Get(id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return a.user, nil
}

func (s *UserStore) Update(id int64, upd models.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	if upd.Email != nil && s.emailTakenLocked(*upd.Email, id) {
		return models.User{}, ErrEmailTaken
	}
	a.user = upd.Apply(a.user)
	return a.user, nil
}

func (s *UserStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.accounts, id)
	return nil
}

// List returns all users ordered by id.
func (s *UserStore) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		users = append(users, a.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *UserStore) emailTakenLocked(email string, except int64) bool {
	for id, a := range s.accounts {
		if id != except && strings.EqualFold(a.user.Email, email) {
			return true
		}
	}
	return false
}
