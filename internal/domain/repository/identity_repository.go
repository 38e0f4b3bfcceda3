// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"devconnect/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrIdentityNotFound is returned when no identity matches the lookup.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrEmailTaken is returned by Create when the normalized email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

const (
	DefaultTalentLimit = 20
	MaxTalentLimit     = 100
)

// TalentFilter narrows ListByRole results.
type TalentFilter struct {
	Skill string // exact skill, case-sensitive as stored
	Query string // case-insensitive substring of the name
	Limit int
}

// EffectiveLimit clamps Limit into [1, MaxTalentLimit], defaulting to DefaultTalentLimit.
func (f TalentFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultTalentLimit
	case f.Limit > MaxTalentLimit:
		return MaxTalentLimit
	default:
		return f.Limit
	}
}

// IdentityRepository is the credential store. Every email argument is normalized by
// the implementation before it is compared or stored.
type IdentityRepository interface {
	// FindByID retrieves a single identity by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)

	// FindByEmail retrieves an identity by email regardless of role.
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)

	// FindByEmailAndRole retrieves an identity only if it registered with the given role.
	FindByEmailAndRole(ctx context.Context, email string, role entity.Role) (*entity.Identity, error)

	// Create persists a new identity. The store enforces email uniqueness atomically
	// and reports a collision as ErrEmailTaken. ID and timestamps are filled in when zero.
	Create(ctx context.Context, identity *entity.Identity) error

	// UpdateFields applies an allow-listed partial update and returns the stored result.
	UpdateFields(ctx context.Context, id uuid.UUID, update entity.ProfileUpdate) (*entity.Identity, error)

	// ListByRole returns identities of a role, newest first.
	ListByRole(ctx context.Context, role entity.Role, filter TalentFilter) ([]*entity.Identity, error)
}
