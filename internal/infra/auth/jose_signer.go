package auth

import (
	"time"

	"devconnect/internal/domain/entity"
	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	jose "github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
)

// joseSigner is the edge token backend, built on go-jose. It only needs HMAC-SHA256
// and JSON, mirroring what a Web-crypto-only runtime offers.
type joseSigner struct {
	secret []byte
	now    func() time.Time
	signer jose.Signer
}

// NewJoseSigner is the constructor for the edge token backend.
func NewJoseSigner(secret string, opts ...Option) (service.TokenService, error) {
	if err := validateSecret(secret); err != nil {
		return nil, err
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create jose signer")
	}

	o := buildOptions(opts)

	return &joseSigner{
		secret: []byte(secret),
		now:    o.now,
		signer: signer,
	}, nil
}

// Issue signs a new token for the subject.
func (s *joseSigner) Issue(subjectID uuid.UUID, role entity.Role) (string, error) {
	payload, err := newTokenPayload(subjectID, role, s.now())
	if err != nil {
		return "", err
	}

	signed, err := josejwt.Signed(s.signer).Claims(payload).Serialize()
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}

// Verify checks the signature with go-jose and expiry with the shared claim rule.
func (s *joseSigner) Verify(raw string) (*entity.Claims, error) {
	token, err := josejwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		if alg, ok := headerAlgorithm(raw); ok && alg != tokenAlgorithm {
			return nil, tokenError(service.TokenSignature, errors.Wrapf(err, "algorithm %q", alg))
		}

		return nil, tokenError(service.TokenMalformed, err)
	}

	var payload tokenPayload
	if err := token.Claims(s.secret, &payload); err != nil {
		if errors.Is(err, jose.ErrCryptoFailure) {
			return nil, tokenError(service.TokenSignature, err)
		}

		return nil, tokenError(service.TokenMalformed, err)
	}

	return payload.claims(s.now())
}
