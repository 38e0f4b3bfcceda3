package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"devconnect/internal/infra/auth"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	color.NoColor = true
}

func TestTokenIssueThenVerify(t *testing.T) {
	for _, backend := range []string{"server", "edge"} {
		t.Run(backend, func(t *testing.T) {
			id := uuid.New()

			var issued bytes.Buffer
			require.NoError(t, runTokenIssue(&issued, testSecret, backend, id.String(), "hirer"))
			token := strings.TrimSpace(issued.String())

			var verified bytes.Buffer
			require.NoError(t, runTokenVerify(&verified, testSecret, token))
			assert.Contains(t, verified.String(), "valid")
			assert.Contains(t, verified.String(), id.String())
			assert.Contains(t, verified.String(), "hirer")
		})
	}
}

func TestTokenIssue_RejectsBadInput(t *testing.T) {
	var out bytes.Buffer

	assert.Error(t, runTokenIssue(&out, testSecret, "server", "not-a-uuid", "student"))
	assert.Error(t, runTokenIssue(&out, testSecret, "server", uuid.NewString(), "admin"))
	assert.Error(t, runTokenIssue(&out, testSecret, "paper", uuid.NewString(), "student"))
	assert.Error(t, runTokenIssue(&out, "short", "server", uuid.NewString(), "student"))
}

func TestTokenVerify_ReportsReason(t *testing.T) {
	var out bytes.Buffer

	err := runTokenVerify(&out, testSecret, "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")

	signer, err := auth.NewJWTSigner("another-secret-another-secret-123")
	require.NoError(t, err)
	token, err := signer.Issue(uuid.New(), "student")
	require.NoError(t, err)

	err = runTokenVerify(&out, testSecret, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestPasswordHashAndCheck(t *testing.T) {
	ctx := context.Background()

	var hashed bytes.Buffer
	require.NoError(t, runSubcommand(ctx, "password", "hash", nil, strings.NewReader("secret1\n"), &hashed))
	hash := strings.TrimSpace(hashed.String())
	require.True(t, strings.HasPrefix(hash, "$2"))

	var checked bytes.Buffer
	require.NoError(t, runSubcommand(ctx, "password", "check", []string{hash}, strings.NewReader("secret1"), &checked))
	assert.Contains(t, checked.String(), "match")

	checked.Reset()
	assert.Error(t, runSubcommand(ctx, "password", "check", []string{hash}, strings.NewReader("secret2\n"), &checked))
	assert.Contains(t, checked.String(), "mismatch")
}

func TestReadPassword_Empty(t *testing.T) {
	_, err := readPassword(strings.NewReader("\n"))
	assert.Error(t, err)
}
