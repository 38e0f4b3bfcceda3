package usecase

import (
	"context"

	"devconnect/internal/domain/entity"
	"devconnect/internal/domain/repository"

	"github.com/google/uuid"
)

// UpdateProfileInput carries an owner's partial profile update.
type UpdateProfileInput struct {
	// ActorID is the authenticated caller; it must equal TargetID.
	ActorID  uuid.UUID
	TargetID uuid.UUID
	Update   entity.ProfileUpdate
}

// ListTalentInput narrows the talent listing shown to hirers.
type ListTalentInput struct {
	Skill string
	Query string
	Limit int
}

// Filter converts the input into the repository filter.
func (in ListTalentInput) Filter() repository.TalentFilter {
	return repository.TalentFilter{
		Skill: in.Skill,
		Query: in.Query,
		Limit: in.Limit,
	}
}

// ProfileUsecase defines the profile operations available after authentication.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, identityID uuid.UUID) (*entity.Identity, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*entity.Identity, error)
	ListTalent(ctx context.Context, input ListTalentInput) ([]*entity.Identity, error)
	ProfileQRCode(ctx context.Context, identityID uuid.UUID) ([]byte, error)
}
