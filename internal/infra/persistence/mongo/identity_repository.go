package mongo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// identityDocument is the stored shape of an identity. The UUID is kept as its
// canonical string so documents stay readable from the shell.
type identityDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Name         string    `bson:"name"`
	Role         string    `bson:"role"`
	Bio          string    `bson:"bio"`
	Company      string    `bson:"company"`
	Position     string    `bson:"position"`
	Education    string    `bson:"education"`
	Github       string    `bson:"github"`
	Linkedin     string    `bson:"linkedin"`
	Website      string    `bson:"website"`
	Skills       []string  `bson:"skills"`
	Location     string    `bson:"location"`
	Avatar       string    `bson:"avatar"`
	Verified     bool      `bson:"verified"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type identityRepository struct {
	collection *mongodriver.Collection
	now        func() time.Time
}

// NewIdentityRepository returns a repository.IdentityRepository backed by the collection.
func NewIdentityRepository(collection *mongodriver.Collection) repository.IdentityRepository {
	return &identityRepository{
		collection: collection,
		now:        time.Now,
	}
}

func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	return repo.findOne(ctx, "find identity by id", bson.D{{Key: "_id", Value: id.String()}})
}

func (repo *identityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	return repo.findOne(ctx, "find identity by email", bson.D{{Key: "email", Value: entity.NormalizeEmail(email)}})
}

func (repo *identityRepository) FindByEmailAndRole(ctx context.Context, email string, role entity.Role) (*entity.Identity, error) {
	return repo.findOne(ctx, "find identity by email and role", bson.D{
		{Key: "email", Value: entity.NormalizeEmail(email)},
		{Key: "role", Value: role.String()},
	})
}

func (repo *identityRepository) findOne(ctx context.Context, op string, filter bson.D) (*entity.Identity, error) {
	var doc identityDocument
	if err := repo.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, errors.WithStack(repository.ErrIdentityNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, op)
	}

	return toIdentityDomain(&doc)
}

// Create relies on the unique email index for atomic duplicate detection.
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

	if _, err := repo.collection.InsertOne(ctx, fromIdentityDomain(identity)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return errors.Wrapf(repository.ErrEmailTaken, "create identity %s", identity.Email)
		}

		return domainerrors.NewDatabaseExecuteError(err, "create identity")
	}

	return nil
}

func (repo *identityRepository) UpdateFields(ctx context.Context, id uuid.UUID, update entity.ProfileUpdate) (*entity.Identity, error) {
	set := updateDocument(update)
	if len(set) == 0 {
		return repo.FindByID(ctx, id)
	}
	set = append(set, bson.E{Key: "updated_at", Value: repo.now().UTC()})

	var doc identityDocument
	err := repo.collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, errors.WithStack(repository.ErrIdentityNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "update identity fields")
	}

	return toIdentityDomain(&doc)
}

func (repo *identityRepository) ListByRole(ctx context.Context, role entity.Role, filter repository.TalentFilter) ([]*entity.Identity, error) {
	cursor, err := repo.collection.Find(ctx,
		listFilter(role, filter),
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(int64(filter.EffectiveLimit())),
	)
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "list identities by role")
	}

	var docs []identityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "decode identities")
	}

	identities := make([]*entity.Identity, 0, len(docs))
	for i := range docs {
		identity, err := toIdentityDomain(&docs[i])
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}

	return identities, nil
}

func listFilter(role entity.Role, filter repository.TalentFilter) bson.D {
	query := bson.D{{Key: "role", Value: role.String()}}

	if skill := strings.TrimSpace(filter.Skill); skill != "" {
		// Equality against an array field matches any element.
		query = append(query, bson.E{Key: "skills", Value: skill})
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = append(query, bson.E{Key: "name", Value: bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}})
	}

	return query
}

func updateDocument(update entity.ProfileUpdate) bson.D {
	var set bson.D
	setString := func(key string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
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
		set = append(set, bson.E{Key: "skills", Value: nonNilSkills(*update.Skills)})
	}

	return set
}

func nonNilSkills(skills []string) []string {
	if skills == nil {
		return []string{}
	}

	return skills
}

func toIdentityDomain(doc *identityDocument) (*entity.Identity, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "decode identity id")
	}

	return &entity.Identity{
		ID:           id,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Name:         doc.Name,
		Role:         entity.Role(doc.Role),
		Profile: entity.Profile{
			Bio:       doc.Bio,
			Company:   doc.Company,
			Position:  doc.Position,
			Education: doc.Education,
			Github:    doc.Github,
			Linkedin:  doc.Linkedin,
			Website:   doc.Website,
			Skills:    nonNilSkills(doc.Skills),
			Location:  doc.Location,
			Avatar:    doc.Avatar,
		},
		Verified:  doc.Verified,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func fromIdentityDomain(identity *entity.Identity) *identityDocument {
	return &identityDocument{
		ID:           identity.ID.String(),
		Email:        identity.Email,
		PasswordHash: identity.PasswordHash,
		Name:         identity.Name,
		Role:         identity.Role.String(),
		Bio:          identity.Profile.Bio,
		Company:      identity.Profile.Company,
		Position:     identity.Profile.Position,
		Education:    identity.Profile.Education,
		Github:       identity.Profile.Github,
		Linkedin:     identity.Profile.Linkedin,
		Website:      identity.Profile.Website,
		Skills:       nonNilSkills(identity.Profile.Skills),
		Location:     identity.Profile.Location,
		Avatar:       identity.Profile.Avatar,
		Verified:     identity.Verified,
		CreatedAt:    identity.CreatedAt,
		UpdatedAt:    identity.UpdatedAt,
	}
}
