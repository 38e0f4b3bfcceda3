// Package qrcode renders profile QR codes.
package qrcode

import (
	"net/url"
	"strings"

	"devconnect/config"
	"devconnect/internal/domain/service"
	"devconnect/internal/errors"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/fx"
)

const (
	defaultSize    = 256
	defaultBaseURL = "http://localhost:3000"
)

// recoveryLevels maps config names to go-qrcode levels. Unknown names fall back to medium.
var recoveryLevels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

// Params defines the parameters required for the QR code service
type Params struct {
	fx.In

	Config *config.Config
}

type profileQR struct {
	size    int
	level   qrcode.RecoveryLevel
	baseURL string
}

// New creates the profile QR renderer from the qrcode config section.
func New(params Params) service.QRCodeService {
	return newProfileQR(params.Config.QRCode)
}

func newProfileQR(cfg *config.QRCodeConfig) *profileQR {
	if cfg == nil {
		cfg = &config.QRCodeConfig{}
	}

	svc := &profileQR{
		size:    cfg.Size,
		level:   qrcode.Medium,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}
	if level, ok := recoveryLevels[strings.ToUpper(cfg.ErrorCorrectionLevel)]; ok {
		svc.level = level
	}
	if svc.size <= 0 {
		svc.size = defaultSize
	}
	if svc.baseURL == "" {
		svc.baseURL = defaultBaseURL
	}

	return svc
}

// GenerateProfileQR encodes the public talent URL of the identity as a PNG.
func (s *profileQR) GenerateProfileQR(identityID uuid.UUID) ([]byte, error) {
	link, err := s.profileURL(identityID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(link, s.level, s.size)
	if err != nil {
		return nil, errors.Wrap(err, "qrcode.Encode")
	}

	return png, nil
}

func (s *profileQR) profileURL(identityID uuid.UUID) (string, error) {
	link, err := url.JoinPath(s.baseURL, "talent", identityID.String())
	if err != nil {
		return "", errors.Wrapf(err, "profile link from %q", s.baseURL)
	}

	return link, nil
}
