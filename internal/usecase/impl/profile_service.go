package impl

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/domain/repository"
	"devconnect/internal/domain/service"
	"devconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	minNameLength   = 2
	maxNameLength   = 50
	maxBioLength    = 500
	maxAvatarLength = 1024
)

type profileService struct {
	identityRepo repository.IdentityRepository
	qrCodes      service.QRCodeService
	events       *eventEmitter
	logger       *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	IdentityRepo   repository.IdentityRepository
	QRCodeService  service.QRCodeService
	EventPublisher service.EventPublisher
	Logger         *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		identityRepo: params.IdentityRepo,
		qrCodes:      params.QRCodeService,
		events:       newEventEmitter(params.EventPublisher, params.Logger),
		logger:       params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return requestLogger(ctx, srv.logger)
}

func (srv *profileService) GetProfile(ctx context.Context, identityID uuid.UUID) (*entity.Identity, error) {
	return findIdentity(ctx, srv.identityRepo, identityID)
}

// UpdateProfile applies an owner's allow-listed changes. Only the identity itself may edit it.
func (srv *profileService) UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*entity.Identity, error) {
	if input.ActorID != input.TargetID {
		srv.log(ctx).Warn("Profile update rejected, caller is not the owner",
			slog.Any("actorID", input.ActorID),
			slog.Any("targetID", input.TargetID),
		)

		return nil, domainerrors.ErrForbidden.WrapMessage("profile belongs to another identity")
	}

	update := input.Update.Normalize()
	if update.IsEmpty() {
		return nil, errors.WithStack(domainerrors.ErrEmptyUpdate)
	}
	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	identity, err := srv.identityRepo.UpdateFields(ctx, input.TargetID, update)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, domainerrors.ErrIdentityNotFound.WrapMessage(input.TargetID.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}

	srv.events.emit(ctx, service.EventIdentityProfileUpdated, identity, update.Fields())
	srv.log(ctx).Debug("Profile updated", slog.Any("identityID", identity.ID), slog.Any("fields", update.Fields()))

	return identity, nil
}

// ListTalent returns student profiles for hirers.
func (srv *profileService) ListTalent(ctx context.Context, input usecase.ListTalentInput) ([]*entity.Identity, error) {
	identities, err := srv.identityRepo.ListByRole(ctx, entity.RoleStudent, input.Filter())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list talent")
	}

	return identities, nil
}

// ProfileQRCode renders the share code of an existing identity.
func (srv *profileService) ProfileQRCode(ctx context.Context, identityID uuid.UUID) ([]byte, error) {
	if _, err := findIdentity(ctx, srv.identityRepo, identityID); err != nil {
		return nil, err
	}

	png, err := srv.qrCodes.GenerateProfileQR(identityID)
	if err != nil {
		return nil, domainerrors.ErrInternalError.WrapMessage(err.Error())
	}

	return png, nil
}

func validateProfileUpdate(update entity.ProfileUpdate) error {
	if update.Name != nil {
		n := utf8.RuneCountInString(*update.Name)
		if n < minNameLength || n > maxNameLength {
			return domainerrors.ErrValidationFailed.WithDetails("name must be between 2 and 50 characters")
		}
	}
	if update.Bio != nil && utf8.RuneCountInString(*update.Bio) > maxBioLength {
		return domainerrors.ErrValidationFailed.WithDetails("bio must be at most 500 characters")
	}
	if update.Avatar != nil && utf8.RuneCountInString(*update.Avatar) > maxAvatarLength {
		return domainerrors.ErrValidationFailed.WithDetails("avatar must be at most 1024 characters")
	}

	return nil
}
