package user

import (
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when the caller's user id has no user record.
	ErrUserNotFound = domain.NewError(domain.KindNotFound, "user_not_found", "user not found")
	// ErrUserUnconfirmed is returned when an unconfirmed user tries to open an account.
	ErrUserUnconfirmed = domain.NewError(
		domain.KindPreconditionFailed,
		"user_unconfirmed",
		"Your user are not confirmed! Please confirm your account",
	)
	// ErrUserUnauthorized is returned when the caller identity is missing or invalid.
	ErrUserUnauthorized = domain.NewError(domain.KindPreconditionFailed, "unauthorized", "user unauthorized")
)

// User is the identity owning at most one account. Users are registered and
// confirmed by the auth service; this module only reads them.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a User with a fresh id and current timestamps.
func New(username, email string, confirmed bool) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Confirmed: confirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
