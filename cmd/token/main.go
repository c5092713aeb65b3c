package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := run(os.Args[1:], cfg.Auth, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(2)
	}
}

// run mints a bearer token signed with the configured secret.
func run(args []string, cfg config.AuthConfig, out io.Writer) error {
	var subject, rawRole string
	ttl := cfg.AccessTokenTTLMinutes

	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&subject, "subject", "", "subject id carried in the token")
	flagSet.StringVar(&rawRole, "role", string(domain.RoleAdmin), "customer, employee, manager or admin")
	flagSet.IntVar(&ttl, "ttl", ttl, "lifetime in minutes")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if strings.TrimSpace(subject) == "" {
		return errors.New("--subject is required")
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return fmt.Errorf("unknown role %q", rawRole)
	}

	token, expiresAt, err := auth.NewTokenManager(cfg.JWTSecret, ttl).GenerateToken(subject, role)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintf(out, "%s\nexpires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
	return nil
}
