// Package token provides the opaque-token source used for both session
// and reset tokens.
package token

import "github.com/google/uuid"

// UUIDSource mints version-4 UUIDs: 122 bits of crypto/rand entropy in a
// URL-safe string, which makes collisions and guessing negligible.
type UUIDSource struct{}

func NewUUIDSource() *UUIDSource {
	return &UUIDSource{}
}

func (UUIDSource) NewToken() string {
	return uuid.NewString()
}
