package models

// DefaultRole is assigned locally to freshly registered users; the register
// endpoint does not return a role.
const DefaultRole = "user"

type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by POST /api/auth/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterResponse is returned by POST /api/auth/register.
type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// User builds the locally persisted record for a new registration.
func (r RegisterResponse) User() User {
	return User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Role:     DefaultRole,
	}
}
