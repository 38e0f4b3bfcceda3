package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"strings"

	"devconnect/internal/infra/auth"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

func handlePasswordHash(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("password hash", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse password hash flags")
	}

	password, err := readPassword(in)
	if err != nil {
		return err
	}

	hash, err := auth.NewBcryptHasher().Hash(ctx, password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	_, _ = color.New(color.FgGreen).Fprintf(out, "%s\n", hash)

	return nil
}

func handlePasswordCheck(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("password check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse password check flags")
	}
	if fs.NArg() != 1 {
		return errors.New("password check needs <hash>")
	}

	password, err := readPassword(in)
	if err != nil {
		return err
	}

	if !auth.NewBcryptHasher().Check(ctx, password, fs.Arg(0)) {
		_, _ = color.New(color.FgRed).Fprintln(out, "mismatch")

		return errors.New("password does not match")
	}

	_, _ = color.New(color.FgGreen).Fprintln(out, "match")

	return nil
}

// readPassword reads the first line of in without its line terminator.
func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read password")
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}

	return password, nil
}
