package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"devconnect/config"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Supported subcommands:
// - token issue <identity-id> <student|hirer>
// - token verify <token>
// - password hash            (reads the password from stdin)
// - password check <hash>    (reads the password from stdin)

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runSubcommand(ctx, os.Args[1], os.Args[2], os.Args[3:], os.Stdin, os.Stdout); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context, group, command string, args []string, in io.Reader, out io.Writer) error {
	switch group + " " + command {
	case "token issue":
		return handleTokenIssue(args, out)
	case "token verify":
		return handleTokenVerify(args, out)
	case "password hash":
		return handlePasswordHash(ctx, args, in, out)
	case "password check":
		return handlePasswordCheck(ctx, args, in, out)
	default:
		printUsage()

		return errors.Errorf("unknown command: %s %s", group, command)
	}
}

// secretFlag registers -secret on fs. An empty value falls back to the service config.
func secretFlag(fs *flag.FlagSet) *string {
	return fs.String("secret", "", "Signing secret (defaults to auth.secret from config / AUTH_SECRET)")
}

func resolveSecret(flagValue string) (string, error) {
	if secret := strings.TrimSpace(flagValue); secret != "" {
		return secret, nil
	}

	cfg, err := config.New()
	if err != nil {
		return "", errors.Wrap(err, "load config")
	}

	return cfg.Auth.Secret, nil
}

func printUsage() {
	fmt.Println("Usage: devconnectctl <group> <command> [options] [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  token issue <identity-id> <student|hirer>   Issue a credential token")
	fmt.Println("  token verify <token>                        Verify a token and print its claims")
	fmt.Println("  password hash                               Hash a password read from stdin")
	fmt.Println("  password check <hash>                       Check a password read from stdin")
	fmt.Println("")
	fmt.Println("Use 'devconnectctl <group> <command> -h' for more information about a command.")
}
