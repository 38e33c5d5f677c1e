package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// AuthService implements registration, login, session lifecycle, and the
// password-reset flow. It holds no user state of its own: every operation
// re-fetches from the repository, so concurrent requests never act on a
// stale in-memory copy.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.CredentialHasher
	tokens ports.TokenSource
	events ports.AuthEventSink
}

func NewAuthService(repo ports.UserRepository, hasher ports.CredentialHasher, tokens ports.TokenSource, events ports.AuthEventSink) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, events: events}
}

func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	s.record(user.Email, user.ID, domain.EventRegistered)
	return user, nil
}

func (s *AuthService) ValidLogin(ctx context.Context, email, password string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Unknown email collapses to false so the caller cannot
			// probe for registered accounts.
			s.record(email, "", domain.EventLoginFailed)
			return false, nil
		}
		return false, fmt.Errorf("valid login: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.record(user.Email, user.ID, domain.EventLoginFailed)
		return false, nil
	}

	s.record(user.Email, user.ID, domain.EventLoginSucceeded)
	return true, nil
}

func (s *AuthService) CreateSession(ctx context.Context, email string) (string, error) {
	for {
		user, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return "", err
		}

		token := s.tokens.NewToken()
		changes := domain.Changeset{}.Set(domain.FieldSessionToken, token)
		// The write is conditioned on the session value just read. A
		// concurrent login or logout moves it, the write commits nothing,
		// and the loop retries against the fresh state instead of
		// overwriting the other side's change.
		err = s.repo.UpdateFieldsWhere(ctx, user.ID, domain.FieldSessionToken, user.SessionToken, changes)
		if errors.Is(err, domain.ErrUserNotFound) {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		return token, nil
	}
}

func (s *AuthService) GetUserFromSession(ctx context.Context, sessionToken string) (*domain.User, error) {
	// An empty token must never reach the store: it would match records
	// whose session column is unset.
	if sessionToken == "" {
		return nil, nil
	}

	user, err := s.repo.FindBySessionToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	return user, nil
}

func (s *AuthService) DestroySession(ctx context.Context, userID string) error {
	changes := domain.Changeset{}.Clear(domain.FieldSessionToken)
	err := s.repo.UpdateFields(ctx, userID, changes)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Logout is idempotent: an unknown id means there is
			// nothing left to revoke.
			return nil
		}
		return fmt.Errorf("destroy session: %w", err)
	}

	s.record("", userID, domain.EventLoggedOut)
	return nil
}

func (s *AuthService) GetResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token := s.tokens.NewToken()
	changes := domain.Changeset{}.Set(domain.FieldResetToken, token)
	if err := s.repo.UpdateFields(ctx, user.ID, changes); err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}

	s.record(user.Email, user.ID, domain.EventResetRequested)
	return token, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return domain.ErrInvalidResetToken
	}

	user, err := s.repo.FindByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("update password: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("update password: hash: %w", err)
	}

	// Replacing the hash and consuming the token happen in one write
	// conditioned on the token still being present. Two bearers racing
	// past the lookup both reach this point, but exactly one matches the
	// condition; the other consumed nothing and is rejected.
	changes := domain.Changeset{}.
		Set(domain.FieldHashedPassword, hash).
		Clear(domain.FieldResetToken)
	if err := s.repo.UpdateFieldsWhere(ctx, user.ID, domain.FieldResetToken, resetToken, changes); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.record(user.Email, user.ID, domain.EventPasswordReset)
	return nil
}

// record hands an event to the audit sink, if one is configured.
func (s *AuthService) record(email, userID string, kind domain.AuthEventKind) {
	if s.events == nil {
		return
	}
	s.events.Record(ports.AuthEventInput{
		Email:     email,
		UserID:    userID,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	})
}
