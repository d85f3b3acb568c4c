package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a registered account with its credential hash.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated view of a user that travels between the
// session store, the policy tables and the API. It carries no credentials.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return i.Username == ""
}

// Identity projects the account into its session-facing form.
func (u User) Identity() Identity {
	return Identity{
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
