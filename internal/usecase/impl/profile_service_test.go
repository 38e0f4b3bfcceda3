package impl

import (
	"context"
	"strings"
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

// profileServiceFixtures holds all test dependencies for profile service tests.
type profileServiceFixtures struct {
	service      usecase.ProfileUsecase
	identityRepo *mockRepo.MockIdentityRepository
	qrCodes      *mockService.MockQRCodeService
	events       *mockService.MockEventPublisher
}

func createTestProfileService(t *testing.T) profileServiceFixtures {
	identityRepo := mockRepo.NewMockIdentityRepository(t)
	qrCodes := mockService.NewMockQRCodeService(t)
	events := mockService.NewMockEventPublisher(t)

	srv := NewProfileService(ProfileServiceParams{
		IdentityRepo:   identityRepo,
		QRCodeService:  qrCodes,
		EventPublisher: events,
		Logger:         newDiscardLogger(),
	})

	return profileServiceFixtures{
		service:      srv,
		identityRepo: identityRepo,
		qrCodes:      qrCodes,
		events:       events,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestProfileService_GetProfile(t *testing.T) {
	fx := createTestProfileService(t)
	ctx := context.Background()
	id := uuid.New()
	identity := &entity.Identity{ID: id}

	fx.identityRepo.EXPECT().FindByID(ctx, id).Return(identity, nil)

	got, err := fx.service.GetProfile(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestProfileService_UpdateProfile_Success(t *testing.T) {
	fx := createTestProfileService(t)
	ctx := context.Background()
	id := uuid.New()
	skills := []string{" go ", "", "Go", "sql"}
	updated := &entity.Identity{ID: id, Role: entity.RoleStudent, Profile: entity.Profile{Bio: "new bio"}}

	fx.identityRepo.EXPECT().
		UpdateFields(ctx, id, mock.MatchedBy(func(u entity.ProfileUpdate) bool {
			return *u.Bio == "new bio" && assert.ObjectsAreEqual([]string{"go", "sql"}, *u.Skills) && u.Name == nil
		})).
		Return(updated, nil)
	fx.events.EXPECT().
		PublishIdentityEvent(mock.Anything, mock.MatchedBy(func(e *service.IdentityEvent) bool {
			return e.Type == service.EventIdentityProfileUpdated &&
				e.IdentityID == id.String() &&
				assert.ObjectsAreEqual([]string{"bio", "skills"}, e.Fields)
		})).
		Return(nil)

	got, err := fx.service.UpdateProfile(ctx, usecase.UpdateProfileInput{
		ActorID:  id,
		TargetID: id,
		Update:   entity.ProfileUpdate{Bio: strPtr("  new bio "), Skills: &skills},
	})

	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestProfileService_UpdateProfile_NotOwner(t *testing.T) {
	fx := createTestProfileService(t)

	_, err := fx.service.UpdateProfile(context.Background(), usecase.UpdateProfileInput{
		ActorID:  uuid.New(),
		TargetID: uuid.New(),
		Update:   entity.ProfileUpdate{Bio: strPtr("x")},
	})

	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestProfileService_UpdateProfile_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		update   entity.ProfileUpdate
		wantCode string
	}{
		{"empty", entity.ProfileUpdate{}, "EMPTY_UPDATE"},
		{"name too short after trim", entity.ProfileUpdate{Name: strPtr("  a  ")}, "VALIDATION_FAILED"},
		{"name too long", entity.ProfileUpdate{Name: strPtr(strings.Repeat("n", 51))}, "VALIDATION_FAILED"},
		{"bio too long", entity.ProfileUpdate{Bio: strPtr(strings.Repeat("b", 501))}, "VALIDATION_FAILED"},
		{"avatar longer than column", entity.ProfileUpdate{Avatar: strPtr(strings.Repeat("a", 1025))}, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestProfileService(t)
			id := uuid.New()

			_, err := fx.service.UpdateProfile(context.Background(), usecase.UpdateProfileInput{
				ActorID:  id,
				TargetID: id,
				Update:   tt.update,
			})

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.ErrorCode())
			assert.Equal(t, 400, appErr.HTTPCode())
		})
	}
}

func TestProfileService_UpdateProfile_NotFound(t *testing.T) {
	fx := createTestProfileService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.identityRepo.EXPECT().UpdateFields(ctx, id, mock.Anything).Return(nil, repository.ErrIdentityNotFound)

	_, err := fx.service.UpdateProfile(ctx, usecase.UpdateProfileInput{
		ActorID:  id,
		TargetID: id,
		Update:   entity.ProfileUpdate{Bio: strPtr("x")},
	})

	assert.ErrorIs(t, err, domainerrors.ErrIdentityNotFound)
}

func TestProfileService_ListTalent(t *testing.T) {
	fx := createTestProfileService(t)
	ctx := context.Background()
	talent := []*entity.Identity{{ID: uuid.New(), Role: entity.RoleStudent}}

	fx.identityRepo.EXPECT().
		ListByRole(ctx, entity.RoleStudent, repository.TalentFilter{Skill: "go", Query: "ada", Limit: 5}).
		Return(talent, nil)

	got, err := fx.service.ListTalent(ctx, usecase.ListTalentInput{Skill: "go", Query: "ada", Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, talent, got)
}

func TestProfileService_ProfileQRCode(t *testing.T) {
	fx := createTestProfileService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.identityRepo.EXPECT().FindByID(ctx, id).Return(&entity.Identity{ID: id}, nil)
	fx.qrCodes.EXPECT().GenerateProfileQR(id).Return([]byte{0x89, 'P', 'N', 'G'}, nil)

	png, err := fx.service.ProfileQRCode(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png)
}

func TestProfileService_ProfileQRCode_UnknownIdentity(t *testing.T) {
	fx := createTestProfileService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.identityRepo.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrIdentityNotFound)

	_, err := fx.service.ProfileQRCode(ctx, id)

	assert.ErrorIs(t, err, domainerrors.ErrIdentityNotFound)
}
