// Command token-generator mints a bearer token for the control API using
// the daemon's configured JWT secret.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "launcher-ui", "client name recorded in the token subject")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := generate(context.Background(), os.Stdout, cfg.Auth, *subject); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}
}

func generate(ctx context.Context, w io.Writer, cfg config.AuthConfig, subject string) error {
	if cfg.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not set; the control API is unauthenticated")
	}
	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(ctx, subject)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
