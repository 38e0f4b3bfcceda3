// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"devconnect/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new identity.
// Role-specific fields the role does not use are dropped.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	UserType  string
	Bio       string
	Company   string
	Position  string
	Education string
	Github    string
}

// LoginInput defines the data required to log in. UserType must match the
// role the email registered with.
type LoginInput struct {
	Email    string
	Password string
	UserType string
}

// --- Output DTOs ---

// AuthOutput is the result of a successful registration or login.
type AuthOutput struct {
	Identity *entity.Identity
	Token    string
}

// AuthUsecase defines the credential operations exposed to the delivery layer.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input LoginInput) (*AuthOutput, error)
	Me(ctx context.Context, identityID uuid.UUID) (*entity.Identity, error)
}
