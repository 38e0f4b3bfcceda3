// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/domain/repository"
	"devconnect/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// identityRepository implements the repository.IdentityRepository interface using GORM.
type identityRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIdentityRepository is the constructor for identityRepository.
func NewIdentityRepository(db *gorm.DB) repository.IdentityRepository {
	return &identityRepository{
		db:  db,
		now: time.Now,
	}
}

// FindByID retrieves a single identity by its unique ID.
func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	return repo.first(ctx, "find identity by id", "id = ?", id)
}

// FindByEmail retrieves an identity by normalized email, regardless of role.
func (repo *identityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	return repo.first(ctx, "find identity by email", "email = ?", entity.NormalizeEmail(email))
}

// FindByEmailAndRole retrieves an identity by normalized email and role.
func (repo *identityRepository) FindByEmailAndRole(ctx context.Context, email string, role entity.Role) (*entity.Identity, error) {
	return repo.first(ctx, "find identity by email and role", "email = ? AND role = ?", entity.NormalizeEmail(email), role.String())
}

func (repo *identityRepository) first(ctx context.Context, op string, query string, args ...any) (*entity.Identity, error) {
	var identityM model.IdentityModel
	if err := repo.db.WithContext(ctx).Where(query, args...).First(&identityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrIdentityNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, op)
	}

	return toIdentityDomain(&identityM), nil
}

// Create inserts the identity. The unique email index decides concurrent registrations.
func (repo *identityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	identity.Email = entity.NormalizeEmail(identity.Email)
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	now := repo.now().UTC()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	identityM := fromIdentityDomain(identity)
	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrapf(repository.ErrEmailTaken, "create identity %s", identity.Email)
		}
		if isInputRejected(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("identity violates a table constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "create identity")
	}

	return nil
}

// UpdateFields writes only the allow-listed columns present in the update.
func (repo *identityRepository) UpdateFields(ctx context.Context, id uuid.UUID, update entity.ProfileUpdate) (*entity.Identity, error) {
	values := updateColumns(update)
	if len(values) == 0 {
		return repo.FindByID(ctx, id)
	}
	values["updated_at"] = repo.now().UTC()

	result := repo.db.WithContext(ctx).
		Model(&model.IdentityModel{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		if isInputRejected(result.Error) {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("profile update violates a table constraint")
		}

		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "update identity fields")
	}
	if result.RowsAffected == 0 {
		return nil, errors.WithStack(repository.ErrIdentityNotFound)
	}

	return repo.FindByID(ctx, id)
}

// ListByRole returns identities of the role, newest first, narrowed by the filter.
func (repo *identityRepository) ListByRole(ctx context.Context, role entity.Role, filter repository.TalentFilter) ([]*entity.Identity, error) {
	query := repo.db.WithContext(ctx).
		Model(&model.IdentityModel{}).
		Where("role = ?", role.String())

	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	}

	if skill := strings.TrimSpace(filter.Skill); skill != "" {
		var err error
		query, err = repo.whereHasSkill(query, skill)
		if err != nil {
			return nil, err
		}
	}

	var identityMs []*model.IdentityModel
	if err := query.Order("created_at DESC").Limit(filter.EffectiveLimit()).Find(&identityMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "list identities by role")
	}

	identities := make([]*entity.Identity, 0, len(identityMs))
	for _, identityM := range identityMs {
		identities = append(identities, toIdentityDomain(identityM))
	}

	return identities, nil
}

// whereHasSkill matches a skill inside the JSON array column. PostgreSQL uses
// jsonb containment (GIN indexed); SQLite, used in tests, uses json_each.
func (repo *identityRepository) whereHasSkill(query *gorm.DB, skill string) (*gorm.DB, error) {
	if repo.db.Dialector.Name() == "postgres" {
		needle, err := json.Marshal([]string{skill})
		if err != nil {
			return nil, errors.Wrap(err, "encode skill filter")
		}

		return query.Where("skills @> ?::jsonb", string(needle)), nil
	}

	return query.Where("EXISTS (SELECT 1 FROM json_each(identities.skills) WHERE json_each.value = ?)", skill), nil
}

func updateColumns(update entity.ProfileUpdate) map[string]any {
	values := make(map[string]any)
	setString := func(column string, v *string) {
		if v != nil {
			values[column] = *v
		}
	}

	setString("name", update.Name)
	setString("bio", update.Bio)
	setString("location", update.Location)
	setString("company", update.Company)
	setString("position", update.Position)
	setString("education", update.Education)
	setString("avatar", update.Avatar)
	if update.Skills != nil {
		values["skills"] = datatypes.JSONSlice[string](nonNilSkills(*update.Skills))
	}

	return values
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNilSkills(skills []string) []string {
	if skills == nil {
		return []string{}
	}

	return skills
}

func toIdentityDomain(data *model.IdentityModel) *entity.Identity {
	return &entity.Identity{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Name:         data.Name,
		Role:         entity.Role(data.Role),
		Profile: entity.Profile{
			Bio:       data.Bio,
			Company:   data.Company,
			Position:  data.Position,
			Education: data.Education,
			Github:    data.Github,
			Linkedin:  data.Linkedin,
			Website:   data.Website,
			Skills:    []string(data.Skills),
			Location:  data.Location,
			Avatar:    data.Avatar,
		},
		Verified:  data.Verified,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromIdentityDomain(data *entity.Identity) *model.IdentityModel {
	return &model.IdentityModel{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Name:         data.Name,
		Role:         data.Role.String(),
		Bio:          data.Profile.Bio,
		Company:      data.Profile.Company,
		Position:     data.Profile.Position,
		Education:    data.Profile.Education,
		Github:       data.Profile.Github,
		Linkedin:     data.Profile.Linkedin,
		Website:      data.Profile.Website,
		Skills:       datatypes.JSONSlice[string](nonNilSkills(data.Profile.Skills)),
		Location:     data.Profile.Location,
		Avatar:       data.Profile.Avatar,
		Verified:     data.Verified,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
