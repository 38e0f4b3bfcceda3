package impl

import (
	"context"
	"testing"

	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/domain/repository"
	"devconnect/internal/domain/service"
	mockRepo "devconnect/internal/mocks/repository"
	mockService "devconnect/internal/mocks/service"
	"devconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      usecase.AuthUsecase
	identityRepo *mockRepo.MockIdentityRepository
	hasher       *mockService.MockPasswordHasher
	tokens       *mockService.MockTokenService
	events       *mockService.MockEventPublisher
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	identityRepo := mockRepo.NewMockIdentityRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	tokens := mockService.NewMockTokenService(t)
	events := mockService.NewMockEventPublisher(t)

	srv := NewAuthService(AuthServiceParams{
		IdentityRepo:   identityRepo,
		Hasher:         hasher,
		TokenService:   tokens,
		EventPublisher: events,
		Logger:         newDiscardLogger(),
	})

	return authServiceFixtures{
		service:      srv,
		identityRepo: identityRepo,
		hasher:       hasher,
		tokens:       tokens,
		events:       events,
	}
}

func validRegisterInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:     " Dev@Test.com ",
		Password:  "secret1",
		Name:      "  Dev ",
		UserType:  "student",
		Bio:       " hello ",
		Company:   "ignored for students",
		Education: "MIT",
		Github:    "devgh",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.identityRepo.EXPECT().FindByEmail(ctx, "dev@test.com").Return(nil, repository.ErrIdentityNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret1").Return("$2a$12$hash", nil)

	var created *entity.Identity
	fx.identityRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Identity")).
		RunAndReturn(func(_ context.Context, identity *entity.Identity) error {
			identity.ID = uuid.New()
			created = identity

			return nil
		})
	fx.tokens.EXPECT().
		Issue(mock.AnythingOfType("uuid.UUID"), entity.RoleStudent).
		Return("signed.token.value", nil)
	fx.events.EXPECT().
		PublishIdentityEvent(mock.Anything, mock.MatchedBy(func(e *service.IdentityEvent) bool {
			return e.Type == service.EventIdentityRegistered && e.Role == "student"
		})).
		Return(nil)

	out, err := fx.service.Register(ctx, validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, "signed.token.value", out.Token)
	require.NotNil(t, created)
	assert.Same(t, created, out.Identity)
	assert.Equal(t, "dev@test.com", created.Email)
	assert.Equal(t, "Dev", created.Name)
	assert.Equal(t, "hello", created.Profile.Bio)
	assert.Equal(t, "MIT", created.Profile.Education)
	assert.Equal(t, "devgh", created.Profile.Github)
	assert.Empty(t, created.Profile.Company, "hirer fields are dropped for students")
	assert.Equal(t, "$2a$12$hash", created.PasswordHash)
}

func TestAuthService_Register_HirerKeepsCompanyFields(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	input := validRegisterInput()
	input.UserType = "hirer"
	input.Position = "CTO"

	fx.identityRepo.EXPECT().FindByEmail(ctx, "dev@test.com").Return(nil, repository.ErrIdentityNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret1").Return("$2a$12$hash", nil)
	fx.identityRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Identity")).Return(nil)
	fx.tokens.EXPECT().Issue(mock.Anything, entity.RoleHirer).Return("t", nil)
	fx.events.EXPECT().PublishIdentityEvent(mock.Anything, mock.Anything).Return(nil)

	out, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "ignored for students", out.Identity.Profile.Company)
	assert.Equal(t, "CTO", out.Identity.Profile.Position)
	assert.Empty(t, out.Identity.Profile.Education)
	assert.Empty(t, out.Identity.Profile.Github)
}

func TestAuthService_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*usecase.RegisterInput)
		wantErr error
	}{
		{"missing email", func(in *usecase.RegisterInput) { in.Email = "  " }, domainerrors.ErrMissingFields},
		{"missing password", func(in *usecase.RegisterInput) { in.Password = "" }, domainerrors.ErrMissingFields},
		{"missing name", func(in *usecase.RegisterInput) { in.Name = "" }, domainerrors.ErrMissingFields},
		{"missing user type", func(in *usecase.RegisterInput) { in.UserType = "" }, domainerrors.ErrMissingFields},
		{"short password", func(in *usecase.RegisterInput) { in.Password = "12345" }, domainerrors.ErrPasswordTooShort},
		{"long password", func(in *usecase.RegisterInput) { in.Password = string(make([]byte, 73)) }, domainerrors.ErrPasswordTooLong},
		{"unknown role", func(in *usecase.RegisterInput) { in.UserType = "admin" }, domainerrors.ErrInvalidUserType},
		{"role is case sensitive", func(in *usecase.RegisterInput) { in.UserType = "Student" }, domainerrors.ErrInvalidUserType},
		{"short password wins over bad role", func(in *usecase.RegisterInput) {
			in.Password = "123"
			in.UserType = "admin"
		}, domainerrors.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			input := validRegisterInput()
			tt.mutate(&input)

			out, err := fx.service.Register(context.Background(), input)

			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.identityRepo.EXPECT().
		FindByEmail(ctx, "dev@test.com").
		Return(&entity.Identity{ID: uuid.New(), Email: "dev@test.com", Role: entity.RoleHirer}, nil)

	_, err := fx.service.Register(ctx, validRegisterInput())

	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "User already exists with this email", appErr.Message())
}

func TestAuthService_Register_DuplicateFromStore(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.identityRepo.EXPECT().FindByEmail(ctx, "dev@test.com").Return(nil, repository.ErrIdentityNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret1").Return("$2a$12$hash", nil)
	fx.identityRepo.EXPECT().
		Create(ctx, mock.Anything).
		Return(errors.Wrap(repository.ErrEmailTaken, "create identity dev@test.com"))

	_, err := fx.service.Register(ctx, validRegisterInput())

	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "find identity by email")

	fx.identityRepo.EXPECT().FindByEmail(ctx, "dev@test.com").Return(nil, dbErr)

	_, err := fx.service.Register(ctx, validRegisterInput())

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.HTTPCode())
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.identityRepo.EXPECT().FindByEmail(ctx, "dev@test.com").Return(nil, repository.ErrIdentityNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret1").Return("", errors.New("boom"))

	_, err := fx.service.Register(ctx, validRegisterInput())

	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
}

func TestAuthService_Register_PublishFailureDoesNotFail(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.identityRepo.EXPECT().FindByEmail(ctx, "dev@test.com").Return(nil, repository.ErrIdentityNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret1").Return("$2a$12$hash", nil)
	fx.identityRepo.EXPECT().Create(ctx, mock.Anything).Return(nil)
	fx.tokens.EXPECT().Issue(mock.Anything, entity.RoleStudent).Return("t", nil)
	fx.events.EXPECT().PublishIdentityEvent(mock.Anything, mock.Anything).Return(errors.New("broker down"))

	out, err := fx.service.Register(ctx, validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, "t", out.Token)
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	identity := &entity.Identity{ID: uuid.New(), Email: "dev@test.com", Role: entity.RoleStudent, PasswordHash: "$hash"}

	fx.identityRepo.EXPECT().FindByEmailAndRole(ctx, "dev@test.com", entity.RoleStudent).Return(identity, nil)
	fx.hasher.EXPECT().Check(ctx, "secret1", "$hash").Return(true)
	fx.tokens.EXPECT().Issue(identity.ID, entity.RoleStudent).Return("signed", nil)

	out, err := fx.service.Login(ctx, usecase.LoginInput{Email: "DEV@test.com ", Password: "secret1", UserType: "student"})

	require.NoError(t, err)
	assert.Equal(t, "signed", out.Token)
	assert.Equal(t, identity, out.Identity)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	identity := &entity.Identity{ID: uuid.New(), Email: "dev@test.com", Role: entity.RoleStudent, PasswordHash: "$hash"}

	tests := []struct {
		name  string
		input usecase.LoginInput
		setup func(fx authServiceFixtures)
	}{
		{
			name:  "wrong password",
			input: usecase.LoginInput{Email: "dev@test.com", Password: "wrong", UserType: "student"},
			setup: func(fx authServiceFixtures) {
				fx.identityRepo.EXPECT().FindByEmailAndRole(mock.Anything, "dev@test.com", entity.RoleStudent).Return(identity, nil)
				fx.hasher.EXPECT().Check(mock.Anything, "wrong", "$hash").Return(false)
			},
		},
		{
			name:  "wrong role",
			input: usecase.LoginInput{Email: "dev@test.com", Password: "secret1", UserType: "hirer"},
			setup: func(fx authServiceFixtures) {
				fx.identityRepo.EXPECT().FindByEmailAndRole(mock.Anything, "dev@test.com", entity.RoleHirer).Return(nil, repository.ErrIdentityNotFound)
				fx.hasher.EXPECT().Hash(mock.Anything, decoyPassword).Return("$decoy", nil)
				fx.hasher.EXPECT().Check(mock.Anything, "secret1", "$decoy").Return(false)
			},
		},
		{
			name:  "unknown email",
			input: usecase.LoginInput{Email: "nobody@test.com", Password: "secret1", UserType: "student"},
			setup: func(fx authServiceFixtures) {
				fx.identityRepo.EXPECT().FindByEmailAndRole(mock.Anything, "nobody@test.com", entity.RoleStudent).Return(nil, repository.ErrIdentityNotFound)
				fx.hasher.EXPECT().Hash(mock.Anything, decoyPassword).Return("$decoy", nil)
				fx.hasher.EXPECT().Check(mock.Anything, "secret1", "$decoy").Return(false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			tt.setup(fx)

			out, err := fx.service.Login(context.Background(), tt.input)

			assert.Nil(t, out)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "Invalid credentials", appErr.Message())
			assert.Equal(t, 401, appErr.HTTPCode())
		})
	}
}

func TestAuthService_Login_DecoyHashComputedOnce(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.identityRepo.EXPECT().FindByEmailAndRole(ctx, "nobody@test.com", entity.RoleStudent).Return(nil, repository.ErrIdentityNotFound).Twice()
	fx.hasher.EXPECT().Hash(mock.Anything, decoyPassword).Return("$decoy", nil).Once()
	fx.hasher.EXPECT().Check(ctx, "secret1", "$decoy").Return(false).Twice()

	for range 2 {
		_, err := fx.service.Login(ctx, usecase.LoginInput{Email: "nobody@test.com", Password: "secret1", UserType: "student"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	}
}

func TestAuthService_Login_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.LoginInput
		wantErr error
	}{
		{"missing email", usecase.LoginInput{Password: "secret1", UserType: "student"}, domainerrors.ErrMissingFields},
		{"missing password", usecase.LoginInput{Email: "dev@test.com", UserType: "student"}, domainerrors.ErrMissingFields},
		{"missing user type", usecase.LoginInput{Email: "dev@test.com", Password: "secret1"}, domainerrors.ErrMissingFields},
		{"bad user type", usecase.LoginInput{Email: "dev@test.com", Password: "secret1", UserType: "admin"}, domainerrors.ErrInvalidUserType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)

			_, err := fx.service.Login(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	id := uuid.New()
	identity := &entity.Identity{ID: id, Email: "dev@test.com"}

	fx.identityRepo.EXPECT().FindByID(ctx, id).Return(identity, nil)

	got, err := fx.service.Me(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestAuthService_Me_NotFound(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.identityRepo.EXPECT().FindByID(ctx, id).Return(nil, errors.WithStack(repository.ErrIdentityNotFound))

	_, err := fx.service.Me(ctx, id)

	assert.ErrorIs(t, err, domainerrors.ErrIdentityNotFound)
}
