package domain

import (
	"errors"
	"time"
)

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidResetToken = errors.New("invalid reset token")
var ErrInvalidField = errors.New("invalid user field")

// User models one registered identity.
//
// SessionToken and ResetToken are empty when no session is active or no
// password-reset request is outstanding. HashedPassword holds the bcrypt
// output only — never a plaintext password, never empty for a persisted
// user. Email and ID are immutable after creation.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	SessionToken   string    `json:"-"`
	ResetToken     string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasSession reports whether the user currently holds an active session.
func (u *User) HasSession() bool {
	return u.SessionToken != ""
}
