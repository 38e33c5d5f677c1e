// Package memory provides an in-process UserRepository. It backs the
// STORE=memory development mode and the service-level tests; semantics
// mirror the Mongo implementation, including the uniqueness and
// per-record atomicity guarantees.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

type record struct {
	mu   sync.Mutex // serializes updates to this user only
	user domain.User
}

// UserRepository stores users in process memory. The table lock guards the
// maps; each record carries its own mutex so concurrent updates to
// different users never contend beyond the map lookup.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*record
	byEmail map[string]*record
	nextID  int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*record),
		byEmail: make(map[string]*record),
	}
}

func (r *UserRepository) Create(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrUserExists
	}

	r.nextID++
	now := time.Now().UTC()
	rec := &record{user: domain.User{
		ID:             strconv.Itoa(r.nextID),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}}
	r.byID[rec.user.ID] = rec
	r.byEmail[email] = rec

	u := rec.user
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	rec, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return rec.snapshot(), nil
}

func (r *UserRepository) FindBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.SessionToken == token && token != "" })
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.ResetToken == token && token != "" })
}

func (r *UserRepository) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.byID {
		if u := rec.snapshot(); match(u) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) UpdateFields(_ context.Context, id string, changes domain.Changeset) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	rec, ok := r.lookup(id)
	if !ok {
		return domain.ErrUserNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.applyLocked(changes)
	return nil
}

// UpdateFieldsWhere re-checks the guard field under the record mutex, so
// the compare and the write form one critical section.
func (r *UserRepository) UpdateFieldsWhere(_ context.Context, id string, field domain.Field, expected string, changes domain.Changeset) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	rec, ok := r.lookup(id)
	if !ok {
		return domain.ErrUserNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if fieldValue(&rec.user, field) != expected {
		return domain.ErrUserNotFound
	}
	rec.applyLocked(changes)
	return nil
}

func (r *UserRepository) lookup(id string) (*record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	return rec, ok
}

// applyLocked writes the changeset into the record. Callers hold rec.mu.
func (rec *record) applyLocked(changes domain.Changeset) {
	for field, value := range changes {
		v := ""
		if value != nil {
			v = *value
		}
		switch field {
		case domain.FieldSessionToken:
			rec.user.SessionToken = v
		case domain.FieldResetToken:
			rec.user.ResetToken = v
		case domain.FieldHashedPassword:
			rec.user.HashedPassword = v
		}
	}
	rec.user.UpdatedAt = time.Now().UTC()
}

func fieldValue(u *domain.User, f domain.Field) string {
	switch f {
	case domain.FieldSessionToken:
		return u.SessionToken
	case domain.FieldResetToken:
		return u.ResetToken
	case domain.FieldHashedPassword:
		return u.HashedPassword
	}
	return ""
}

// snapshot returns a copy so callers never share the stored struct.
func (rec *record) snapshot() *domain.User {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	u := rec.user
	return &u
}
