// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "context"

const (
	// MinPasswordLength is enforced at registration before hashing.
	MinPasswordLength = 6

	// MaxPasswordBytes is bcrypt's input limit; longer inputs are rejected rather than truncated.
	MaxPasswordBytes = 72
)

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(ctx context.Context, password string) (string, error)

	// Check compares a plaintext password with a hash. A malformed hash is a mismatch.
	Check(ctx context.Context, password, hash string) bool
}
