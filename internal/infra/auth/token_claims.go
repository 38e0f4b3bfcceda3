package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"devconnect/config"
	"devconnect/internal/domain/entity"
	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenAlgorithm is the only accepted JWS algorithm.
const tokenAlgorithm = "HS256"

// tokenPayload is the claim set written and read by every token backend.
type tokenPayload struct {
	UserID    string `json:"userId"`
	UserType  string `json:"userType"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Option customizes a token backend.
type Option func(*signerOptions)

type signerOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *signerOptions) {
		o.now = now
	}
}

func buildOptions(opts []Option) signerOptions {
	o := signerOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func validateSecret(secret string) error {
	if secret == "" {
		return errors.New("token secret must be provided")
	}
	if len(secret) < config.MinSecretLength {
		return errors.Errorf("token secret must be at least %d bytes", config.MinSecretLength)
	}

	return nil
}

func newTokenPayload(subjectID uuid.UUID, role entity.Role, now time.Time) (tokenPayload, error) {
	if subjectID == uuid.Nil {
		return tokenPayload{}, errors.New("token subject must not be empty")
	}
	if !role.IsValid() {
		return tokenPayload{}, errors.Wrapf(entity.ErrInvalidRole, "%q", role)
	}

	return tokenPayload{
		UserID:    subjectID.String(),
		UserType:  role.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(entity.TokenLifetime).Unix(),
	}, nil
}

// claims converts a signature-verified payload into domain claims. A token is
// valid only while now is strictly before its expiry.
func (p tokenPayload) claims(now time.Time) (*entity.Claims, error) {
	if p.ExpiresAt == 0 {
		return nil, tokenError(service.TokenMalformed, errors.New("missing exp claim"))
	}

	expiresAt := time.Unix(p.ExpiresAt, 0)
	if !now.Before(expiresAt) {
		return nil, tokenError(service.TokenExpired, errors.Errorf("expired at %s", expiresAt.UTC().Format(time.RFC3339)))
	}

	subjectID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, tokenError(service.TokenMalformed, errors.Wrap(err, "userId claim"))
	}

	role, err := entity.ParseRole(p.UserType)
	if err != nil {
		return nil, tokenError(service.TokenMalformed, errors.Wrap(err, "userType claim"))
	}

	return &entity.Claims{
		SubjectID: subjectID,
		Role:      role,
		IssuedAt:  time.Unix(p.IssuedAt, 0),
		ExpiresAt: expiresAt,
	}, nil
}

func tokenError(reason service.TokenFailure, err error) error {
	return &service.TokenError{Reason: reason, Err: err}
}

// headerAlgorithm reads the alg field of a compact JWS without verifying it.
func headerAlgorithm(raw string) (string, bool) {
	header, _, ok := strings.Cut(raw, ".")
	if !ok {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(header)
	if err != nil {
		return "", false
	}

	var h struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(decoded, &h); err != nil {
		return "", false
	}

	return h.Alg, true
}

// The methods below let golang-jwt decode straight into tokenPayload. Claim
// validation is done by tokenPayload.claims so both backends share one rule.

func (p tokenPayload) GetExpirationTime() (*jwt.NumericDate, error) {
	if p.ExpiresAt == 0 {
		return nil, nil
	}

	return jwt.NewNumericDate(time.Unix(p.ExpiresAt, 0)), nil
}

func (p tokenPayload) GetIssuedAt() (*jwt.NumericDate, error) {
	if p.IssuedAt == 0 {
		return nil, nil
	}

	return jwt.NewNumericDate(time.Unix(p.IssuedAt, 0)), nil
}

func (p tokenPayload) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (p tokenPayload) GetIssuer() (string, error) {
	return "", nil
}

func (p tokenPayload) GetSubject() (string, error) {
	return p.UserID, nil
}

func (p tokenPayload) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
