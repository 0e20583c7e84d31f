// Package models holds the client-side data types mirrored from the remote API
// and the in-memory session record.
package models

// User mirrors the server's user record. The client only edits copies.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserUpdate is a partial user for PUT /api/users/:id; nil fields are omitted.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// Apply returns a copy of u with the non-nil fields of upd applied.
func (upd UserUpdate) Apply(u User) User {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	return u
}

// IsEmpty reports whether no field is set.
func (upd UserUpdate) IsEmpty() bool {
	return upd.Username == nil && upd.Email == nil && upd.Role == nil
}
