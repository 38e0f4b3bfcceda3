package service

import (
	"errors"

	"devconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrInvalidToken matches every TokenError through errors.Is.
var ErrInvalidToken = errors.New("invalid token")

// TokenFailure classifies why a token was rejected.
type TokenFailure string

const (
	TokenMalformed TokenFailure = "malformed"
	TokenSignature TokenFailure = "signature"
	TokenExpired   TokenFailure = "expired"
)

// TokenError is the typed result of a failed verification. Callers reject all
// reasons alike; the reason exists for logs.
type TokenError struct {
	Reason TokenFailure
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Reason)
	}

	return "token " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidToken) true for any TokenError.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// TokenFailureReason extracts the failure reason from err, or "" if err is not a TokenError.
func TokenFailureReason(err error) TokenFailure {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Reason
	}

	return ""
}

// TokenService issues and verifies credential tokens. Every implementation shares
// the claim schema, the HS256 algorithm, the lifetime and the secret, so a token
// from one verifies under any other.
type TokenService interface {
	// Issue signs a token for the subject that expires entity.TokenLifetime from now.
	Issue(subjectID uuid.UUID, role entity.Role) (string, error)

	// Verify checks signature and expiry. Failures are *TokenError.
	Verify(token string) (*entity.Claims, error)
}
