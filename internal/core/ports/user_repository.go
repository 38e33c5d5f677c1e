package ports

import (
	"context"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

// UserRepository defines the interface for durable user persistence.
//
// Implementations must enforce a unique constraint on email, keep updates
// to a single record atomic (a crash after UpdateFields returns must not
// lose the write), and allow concurrent updates to different users to
// proceed without blocking each other.
type UserRepository interface {
	// FindByEmail returns the user registered under email, or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindBySessionToken resolves an active session token to its owner,
	// or ErrUserNotFound.
	FindBySessionToken(ctx context.Context, token string) (*domain.User, error)

	// FindByResetToken resolves an outstanding reset token to its owner,
	// or ErrUserNotFound.
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)

	// Create persists a new user with a fresh id. Returns ErrUserExists
	// when the email is already registered.
	Create(ctx context.Context, email, hashedPassword string) (*domain.User, error)

	// UpdateFields atomically applies the changeset to the user with the
	// given id. Returns ErrUserNotFound when the id is absent and
	// ErrInvalidField when the changeset names an immutable or unknown
	// field.
	UpdateFields(ctx context.Context, id string, changes domain.Changeset) error

	// UpdateFieldsWhere applies the changeset like UpdateFields, but only
	// while field still holds expected on the stored record (an empty
	// expected matches an unset field). A read-modify-write caller passes
	// the value it read; ErrUserNotFound reports that the user is gone or
	// the value moved since the read, so the write committed nothing.
	UpdateFieldsWhere(ctx context.Context, id string, field domain.Field, expected string, changes domain.Changeset) error
}
