package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// GenerateProfileQR renders a PNG that links to the public profile of an identity
	GenerateProfileQR(identityID uuid.UUID) ([]byte, error)
}
