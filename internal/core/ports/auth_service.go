package ports

import (
	"context"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

// AuthService orchestrates registration, credential checks, the session
// lifecycle, and the password-reset flow.
type AuthService interface {
	// RegisterUser creates an account for email with a salted hash of
	// password. Returns ErrUserExists when the email is taken. No session
	// is created as a side effect.
	RegisterUser(ctx context.Context, email, password string) (*domain.User, error)

	// ValidLogin reports whether email/password name a registered user
	// with a matching password. An unknown email yields (false, nil) —
	// never an error — so callers cannot distinguish a missing account
	// from a wrong password. A non-nil error means the store itself
	// failed.
	ValidLogin(ctx context.Context, email, password string) (bool, error)

	// CreateSession mints a fresh opaque session token for the user
	// registered under email and persists it. Returns ErrUserNotFound
	// when the email is absent.
	CreateSession(ctx context.Context, email string) (string, error)

	// GetUserFromSession resolves a session token to its owner. An empty
	// token and an unmatched token both yield (nil, nil); the store is
	// never queried with an empty token.
	GetUserFromSession(ctx context.Context, sessionToken string) (*domain.User, error)

	// DestroySession clears the user's session token. Idempotent:
	// succeeds whether or not a session was active, and whether or not
	// the user id exists.
	DestroySession(ctx context.Context, userID string) error

	// GetResetToken mints and persists a single-use password-reset token
	// for the user registered under email. Returns ErrUserNotFound when
	// the email is absent — this flow is initiated by the account owner,
	// so the distinguishable error is intentional.
	GetResetToken(ctx context.Context, email string) (string, error)

	// UpdatePassword consumes resetToken and replaces the owner's
	// password hash; the token is cleared in the same atomic update.
	// Returns ErrInvalidResetToken for unknown or already-consumed
	// tokens.
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
}
