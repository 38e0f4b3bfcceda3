package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IdentityModel mirrors the 'identities' table. IDs are generated by the application
// so the same model works on PostgreSQL and SQLite.
type IdentityModel struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Email        string                      `gorm:"type:varchar(255);not null;uniqueIndex:idx_identities_email"`
	PasswordHash string                      `gorm:"type:varchar(255);not null"`
	Name         string                      `gorm:"type:varchar(50);not null"`
	Role         string                      `gorm:"type:varchar(16);not null;index:idx_identities_role_created,priority:1"`
	Bio          string                      `gorm:"type:varchar(500);not null;default:''"`
	Company      string                      `gorm:"type:varchar(255);not null;default:''"`
	Position     string                      `gorm:"type:varchar(255);not null;default:''"`
	Education    string                      `gorm:"type:varchar(255);not null;default:''"`
	Github       string                      `gorm:"type:varchar(255);not null;default:''"`
	Linkedin     string                      `gorm:"type:varchar(255);not null;default:''"`
	Website      string                      `gorm:"type:varchar(255);not null;default:''"`
	Skills       datatypes.JSONSlice[string] `gorm:"not null"`
	Location     string                      `gorm:"type:varchar(255);not null;default:''"`
	Avatar       string                      `gorm:"type:varchar(1024);not null;default:''"`
	Verified     bool                        `gorm:"not null;default:false"`
	CreatedAt    time.Time                   `gorm:"not null;index:idx_identities_role_created,priority:2"`
	UpdatedAt    time.Time                   `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (IdentityModel) TableName() string {
	return "identities"
}
