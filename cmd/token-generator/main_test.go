package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: strings.Repeat("k", 32), TokenLifetimeMinutes: 5}

	var out bytes.Buffer
	require.NoError(t, generate(context.Background(), &out, cfg, "ci"))

	svc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
}

func TestGenerate_NoSecret(t *testing.T) {
	var out bytes.Buffer
	err := generate(context.Background(), &out, config.AuthConfig{TokenLifetimeMinutes: 5}, "ci")
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
