package ports

// CredentialHasher performs one-way salted hashing and constant-time
// verification of passwords.
type CredentialHasher interface {
	// Hash produces a salted one-way hash of plaintext. The salt is
	// randomized per call, so two hashes of the same input differ.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hashed. Comparison time
	// does not depend on where a mismatch occurs. Malformed hashed input
	// is a mismatch, never an error.
	Verify(plaintext, hashed string) bool
}

// TokenSource produces opaque, unguessable, URL-safe identifiers. The same
// source mints both session and reset tokens; the two differ only in role.
type TokenSource interface {
	NewToken() string
}
