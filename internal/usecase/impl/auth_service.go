// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/domain/repository"
	"devconnect/internal/domain/service"
	"devconnect/internal/errors"
	"devconnect/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// decoyPassword is hashed once so logins for unknown accounts spend the same bcrypt time.
const decoyPassword = "devconnect-decoy-password"

// authService implements the AuthUsecase interface.
type authService struct {
	identityRepo repository.IdentityRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	events       *eventEmitter
	decoyHash    func() string
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	IdentityRepo   repository.IdentityRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	EventPublisher service.EventPublisher
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := &authService{
		identityRepo: params.IdentityRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		events:       newEventEmitter(params.EventPublisher, params.Logger),
		logger:       params.Logger,
	}
	srv.decoyHash = sync.OnceValue(func() string {
		hash, err := srv.hasher.Hash(context.Background(), decoyPassword)
		if err != nil {
			return ""
		}

		return hash
	})

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return requestLogger(ctx, srv.logger)
}

// Register creates an identity and issues its first token.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	if email == "" || input.Password == "" || name == "" || strings.TrimSpace(input.UserType) == "" {
		return nil, errors.WithStack(domainerrors.ErrMissingFields)
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	role, err := entity.ParseRole(input.UserType)
	if err != nil {
		return nil, domainerrors.ErrInvalidUserType.WrapMessage(err.Error())
	}

	srv.log(ctx).Debug("Starting registration", slog.String("email", email), slog.Any("role", role))

	if _, err := srv.identityRepo.FindByEmail(ctx, email); err == nil {
		srv.log(ctx).Warn("Registration rejected, email already registered", slog.String("email", email))

		return nil, domainerrors.ErrEmailTaken.WrapMessage("email already registered")
	} else if !errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, errors.Wrap(err, "failed to check existing identity")
	}

	hash, err := srv.hasher.Hash(ctx, input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, hashFailure(err)
	}

	identity := buildIdentity(input, email, name, role, hash)
	if err := srv.identityRepo.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// Lost a concurrent registration race; the unique index decided.
			srv.log(ctx).Warn("Registration rejected by unique email index", slog.String("email", email))

			return nil, domainerrors.ErrEmailTaken.WrapMessage(err.Error())
		}

		return nil, errors.Wrap(err, "failed to create identity")
	}

	token, err := srv.tokenService.Issue(identity.ID, identity.Role)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token after registration", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage(err.Error())
	}

	srv.events.emit(ctx, service.EventIdentityRegistered, identity, nil)
	srv.log(ctx).Info("Identity registered", slog.Any("identityID", identity.ID), slog.Any("role", role))

	return &usecase.AuthOutput{Identity: identity, Token: token}, nil
}

// Login verifies credentials for the (email, role) pair. Every mismatch yields
// the same ErrInvalidCredentials so the response never reveals whether the email exists.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" || strings.TrimSpace(input.UserType) == "" {
		return nil, errors.WithStack(domainerrors.ErrMissingFields)
	}
	role, err := entity.ParseRole(input.UserType)
	if err != nil {
		return nil, domainerrors.ErrInvalidUserType.WrapMessage(err.Error())
	}

	identity, err := srv.identityRepo.FindByEmailAndRole(ctx, email, role)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		srv.hasher.Check(ctx, input.Password, srv.decoyHash())
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "no identity for email and role"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("identity not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find identity")
	}

	if !srv.hasher.Check(ctx, input.Password, identity.PasswordHash) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.WithStack(ctxErr)
		}
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "password mismatch"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
	}

	token, err := srv.tokenService.Issue(identity.ID, identity.Role)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token at login", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage(err.Error())
	}

	srv.log(ctx).Debug("Identity logged in", slog.Any("identityID", identity.ID))

	return &usecase.AuthOutput{Identity: identity, Token: token}, nil
}

// Me loads the identity named by verified token claims.
func (srv *authService) Me(ctx context.Context, identityID uuid.UUID) (*entity.Identity, error) {
	return findIdentity(ctx, srv.identityRepo, identityID)
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < service.MinPasswordLength {
		return errors.WithStack(domainerrors.ErrPasswordTooShort)
	}
	if len(password) > service.MaxPasswordBytes {
		return errors.WithStack(domainerrors.ErrPasswordTooLong)
	}

	return nil
}

func hashFailure(err error) error {
	if errors.IsContext(err) {
		return errors.WithStack(err)
	}

	return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
}

func buildIdentity(input usecase.RegisterInput, email, name string, role entity.Role, hash string) *entity.Identity {
	identity := &entity.Identity{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Profile: entity.Profile{
			Bio:    strings.TrimSpace(input.Bio),
			Skills: []string{},
		},
	}

	switch role {
	case entity.RoleHirer:
		identity.Profile.Company = strings.TrimSpace(input.Company)
		identity.Profile.Position = strings.TrimSpace(input.Position)
	case entity.RoleStudent:
		identity.Profile.Education = strings.TrimSpace(input.Education)
		identity.Profile.Github = strings.TrimSpace(input.Github)
	}

	return identity
}

func findIdentity(ctx context.Context, repo repository.IdentityRepository, id uuid.UUID) (*entity.Identity, error) {
	identity, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, domainerrors.ErrIdentityNotFound.WrapMessage(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find identity")
	}

	return identity, nil
}
