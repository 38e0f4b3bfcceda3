package main

import (
	"flag"
	"io"
	"time"

	"devconnect/config"
	"devconnect/internal/domain/entity"
	"devconnect/internal/domain/service"
	"devconnect/internal/infra/auth"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func handleTokenIssue(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token issue", flag.ContinueOnError)
	secret := secretFlag(fs)
	backend := fs.String("backend", config.TokenBackendServer, "Token backend: server or edge")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse token issue flags")
	}
	if fs.NArg() != 2 {
		return errors.New("token issue needs <identity-id> <role>")
	}

	resolved, err := resolveSecret(*secret)
	if err != nil {
		return err
	}

	return runTokenIssue(out, resolved, *backend, fs.Arg(0), fs.Arg(1))
}

func runTokenIssue(out io.Writer, secret, backend, rawID, rawRole string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return errors.Wrap(err, "invalid identity id")
	}
	role, err := entity.ParseRole(rawRole)
	if err != nil {
		return err
	}

	tokens, err := newSigner(secret, backend)
	if err != nil {
		return err
	}

	token, err := tokens.Issue(id, role)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(out, "%s\n", token)

	return nil
}

func handleTokenVerify(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token verify", flag.ContinueOnError)
	secret := secretFlag(fs)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse token verify flags")
	}
	if fs.NArg() != 1 {
		return errors.New("token verify needs <token>")
	}

	resolved, err := resolveSecret(*secret)
	if err != nil {
		return err
	}

	return runTokenVerify(out, resolved, fs.Arg(0))
}

// runTokenVerify prints the claims, or the failure reason as the error.
func runTokenVerify(out io.Writer, secret, token string) error {
	tokens, err := auth.NewJoseSigner(secret)
	if err != nil {
		return err
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		return errors.Errorf("token rejected: %s", service.TokenFailureReason(err))
	}

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	_, _ = green.Fprintln(out, "valid")
	_, _ = cyan.Fprintf(out, "  userId:    %s\n", claims.SubjectID)
	_, _ = cyan.Fprintf(out, "  userType:  %s\n", claims.Role)
	_, _ = cyan.Fprintf(out, "  issuedAt:  %s\n", claims.IssuedAt.UTC().Format(time.RFC3339))
	_, _ = cyan.Fprintf(out, "  expiresAt: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))

	return nil
}

func newSigner(secret, backend string) (service.TokenService, error) {
	switch backend {
	case config.TokenBackendServer:
		return auth.NewJWTSigner(secret)
	case config.TokenBackendEdge:
		return auth.NewJoseSigner(secret)
	default:
		return nil, errors.Errorf("unknown token backend: %s", backend)
	}
}
