package auth

import (
	"devconnect/config"
	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	"go.uber.org/fx"
)

// TokenServiceParams holds dependencies for the token backends, injected by Fx.
type TokenServiceParams struct {
	fx.In

	Config *config.Config
}

// NewTokenService provides the backend that issues tokens for login and registration,
// chosen by auth.tokenBackend.
func NewTokenService(params TokenServiceParams) (service.TokenService, error) {
	secret := params.Config.Auth.Secret

	switch params.Config.Auth.TokenBackend {
	case config.TokenBackendEdge:
		return NewJoseSigner(secret)
	case config.TokenBackendServer, "":
		return NewJWTSigner(secret)
	default:
		return nil, errors.Errorf("unknown token backend: %s", params.Config.Auth.TokenBackend)
	}
}

// NewEdgeTokenService provides the go-jose backend the request gate verifies with,
// independent of which backend issues tokens.
func NewEdgeTokenService(params TokenServiceParams) (service.TokenService, error) {
	return NewJoseSigner(params.Config.Auth.Secret)
}
