package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenLifetime is the fixed validity window of a credential token.
const TokenLifetime = 7 * 24 * time.Hour

// Claims are the verified contents of a credential token.
type Claims struct {
	SubjectID uuid.UUID
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
