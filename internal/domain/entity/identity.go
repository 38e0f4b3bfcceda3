package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is a registered account. PasswordHash is never serialized; handlers
// respond with PublicIdentity instead.
type Identity struct {
	ID           uuid.UUID
	Email        string // normalized, see NormalizeEmail
	PasswordHash string
	Name         string
	Role         Role
	Profile      Profile
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional, self-described fields of an identity.
type Profile struct {
	Bio       string
	Company   string
	Position  string
	Education string
	Github    string
	Linkedin  string
	Website   string
	Skills    []string
	Location  string
	Avatar    string
}

// ProfileUpdate is the allow-list of fields an owner may change after registration.
// A nil pointer leaves the field untouched. Email and role are not representable.
type ProfileUpdate struct {
	Name      *string   `json:"name"`
	Bio       *string   `json:"bio"`
	Location  *string   `json:"location"`
	Company   *string   `json:"company"`
	Position  *string   `json:"position"`
	Education *string   `json:"education"`
	Skills    *[]string `json:"skills"`
	Avatar    *string   `json:"avatar"`
}

// IsEmpty reports whether the update would change nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Bio == nil && u.Location == nil && u.Company == nil &&
		u.Position == nil && u.Education == nil && u.Skills == nil && u.Avatar == nil
}

// Fields lists the JSON names of the fields the update sets.
func (u ProfileUpdate) Fields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}

	add("name", u.Name != nil)
	add("bio", u.Bio != nil)
	add("location", u.Location != nil)
	add("company", u.Company != nil)
	add("position", u.Position != nil)
	add("education", u.Education != nil)
	add("skills", u.Skills != nil)
	add("avatar", u.Avatar != nil)

	return fields
}

// Normalize trims free-text fields and drops blank skills.
func (u ProfileUpdate) Normalize() ProfileUpdate {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)

		return &v
	}

	out := ProfileUpdate{
		Name:      trim(u.Name),
		Bio:       trim(u.Bio),
		Location:  trim(u.Location),
		Company:   trim(u.Company),
		Position:  trim(u.Position),
		Education: trim(u.Education),
		Avatar:    trim(u.Avatar),
	}
	if u.Skills != nil {
		skills := NormalizeSkills(*u.Skills)
		out.Skills = &skills
	}

	return out
}

// Apply copies the non-nil fields of the update onto the identity.
func (u ProfileUpdate) Apply(identity *Identity) {
	if u.Name != nil {
		identity.Name = *u.Name
	}
	if u.Bio != nil {
		identity.Profile.Bio = *u.Bio
	}
	if u.Location != nil {
		identity.Profile.Location = *u.Location
	}
	if u.Company != nil {
		identity.Profile.Company = *u.Company
	}
	if u.Position != nil {
		identity.Profile.Position = *u.Position
	}
	if u.Education != nil {
		identity.Profile.Education = *u.Education
	}
	if u.Skills != nil {
		identity.Profile.Skills = *u.Skills
	}
	if u.Avatar != nil {
		identity.Profile.Avatar = *u.Avatar
	}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeSkills trims each skill and removes empty and repeated entries, keeping order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(s)]; ok {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		out = append(out, s)
	}

	return out
}

// PublicIdentity is the response view of an Identity. It has no password field.
type PublicIdentity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	UserType  Role      `json:"userType"`
	Bio       string    `json:"bio"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Education string    `json:"education"`
	Github    string    `json:"github"`
	Linkedin  string    `json:"linkedin"`
	Website   string    `json:"website"`
	Skills    []string  `json:"skills"`
	Location  string    `json:"location"`
	Verified  bool      `json:"verified"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the response view of the identity.
func (i *Identity) Public() *PublicIdentity {
	skills := i.Profile.Skills
	if skills == nil {
		skills = []string{}
	}

	return &PublicIdentity{
		ID:        i.ID,
		Email:     i.Email,
		Name:      i.Name,
		UserType:  i.Role,
		Bio:       i.Profile.Bio,
		Company:   i.Profile.Company,
		Position:  i.Profile.Position,
		Education: i.Profile.Education,
		Github:    i.Profile.Github,
		Linkedin:  i.Profile.Linkedin,
		Website:   i.Profile.Website,
		Skills:    skills,
		Location:  i.Profile.Location,
		Verified:  i.Verified,
		Avatar:    i.Profile.Avatar,
		CreatedAt: i.CreatedAt,
	}
}
