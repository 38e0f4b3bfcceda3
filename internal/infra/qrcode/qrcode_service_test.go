package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"devconnect/config"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileQR_Defaults(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.QRCodeConfig
		wantSize    int
		wantLevel   qrcode.RecoveryLevel
		wantBaseURL string
	}{
		{"nil config", nil, defaultSize, qrcode.Medium, defaultBaseURL},
		{"low", &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "L"}, 128, qrcode.Low, defaultBaseURL},
		{"quartile lowercase", &config.QRCodeConfig{ErrorCorrectionLevel: "q"}, defaultSize, qrcode.High, defaultBaseURL},
		{"highest", &config.QRCodeConfig{ErrorCorrectionLevel: "H"}, defaultSize, qrcode.Highest, defaultBaseURL},
		{"unknown level", &config.QRCodeConfig{ErrorCorrectionLevel: "X"}, defaultSize, qrcode.Medium, defaultBaseURL},
		{"trailing slash", &config.QRCodeConfig{BaseURL: "https://devconnect.example/ "}, defaultSize, qrcode.Medium, "https://devconnect.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newProfileQR(tt.cfg)
			assert.Equal(t, tt.wantSize, svc.size)
			assert.Equal(t, tt.wantLevel, svc.level)
			assert.Equal(t, tt.wantBaseURL, svc.baseURL)
		})
	}
}

func TestGenerateProfileQR_Sizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		svc := New(Params{Config: &config.Config{QRCode: &config.QRCodeConfig{Size: size}}})

		qrBytes, err := svc.GenerateProfileQR(uuid.New())
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(qrBytes))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
		assert.Equal(t, size, img.Bounds().Dy())
	}
}

func TestProfileURL(t *testing.T) {
	id := uuid.MustParse("3f1c8f0e-8a4b-4d65-9a43-1df0f0a5b0d1")

	link, err := newProfileQR(&config.QRCodeConfig{BaseURL: "https://devconnect.example/app/"}).profileURL(id)
	require.NoError(t, err)
	assert.Equal(t, "https://devconnect.example/app/talent/3f1c8f0e-8a4b-4d65-9a43-1df0f0a5b0d1", link)

	_, err = newProfileQR(&config.QRCodeConfig{BaseURL: "http://[::1"}).profileURL(id)
	assert.Error(t, err)
}
