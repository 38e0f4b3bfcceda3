package auth

import (
	"time"

	"devconnect/internal/domain/entity"
	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtSigner is the server token backend, built on golang-jwt.
type jwtSigner struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTSigner is the constructor for the server token backend.
func NewJWTSigner(secret string, opts ...Option) (service.TokenService, error) {
	if err := validateSecret(secret); err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	return &jwtSigner{
		secret: []byte(secret),
		now:    o.now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{tokenAlgorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Issue signs a new token for the subject.
func (s *jwtSigner) Issue(subjectID uuid.UUID, role entity.Role) (string, error) {
	payload, err := newTokenPayload(subjectID, role, s.now())
	if err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}

// Verify checks the signature with golang-jwt and expiry with the shared claim rule.
func (s *jwtSigner) Verify(raw string) (*entity.Claims, error) {
	var payload tokenPayload
	_, err := s.parser.ParseWithClaims(raw, &payload, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}

	return payload.claims(s.now())
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return tokenError(service.TokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return tokenError(service.TokenExpired, err)
	default:
		return tokenError(service.TokenMalformed, err)
	}
}
