// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"context"
	"runtime"

	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// BcryptCost is the work factor for every stored password. Changing it is a code change.
const BcryptCost = 12

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
// At most GOMAXPROCS hashes run at once; further callers wait or give up with their context.
type bcryptHasher struct {
	cost  int
	slots *semaphore.Weighted
}

// NewBcryptHasher is the constructor for bcryptHasher.
func NewBcryptHasher() service.PasswordHasher {
	return newBcryptHasher(BcryptCost)
}

func newBcryptHasher(cost int) *bcryptHasher {
	return &bcryptHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Hash generates a bcrypt hash of the password.
func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if len(password) > service.MaxPasswordBytes {
		return "", errors.WithStack(bcrypt.ErrPasswordTooLong)
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "wait for hashing slot")
	}
	defer h.slots.Release(1)

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt generate")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash. Malformed hashes,
// oversized input and a cancelled context all report false.
func (h *bcryptHasher) Check(ctx context.Context, password, hash string) bool {
	if len(password) > service.MaxPasswordBytes {
		return false
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
