package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	t.Setenv("TENANTAUTH_CONFIG", "")

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":    "www.example:9000",
		"endpoint_addr_http":    "www.example:9001",
		"database_dsn":          "postgres://db",
		"private_key_path":      "/keys/priv.pem",
		"public_key_path":       "/keys/pub.pem",
		"issuer":                "issuer",
		"access_token_ttl":      "30m",
		"reset_token_ttl":       "10m",
		"invite_ttl":            "24h",
		"otp_ttl":               60000000000,
		"bcrypt_cost":           12,
		"reset_url":             "https://app/reset?t=",
		"invite_url":            "https://app/invite?t=",
		"notifier":              "aws",
		"ses_from":              "no-reply@example.com",
		"aws_region":            "eu-west-1",
		"aws_endpoint":          "http://localstack:4566",
		"aws_access_key_id":     "AKIA",
		"aws_secret_access_key": "secret",
		"log_level":             "debug",
		"migrate":               false,
		"storage":               "memory",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "www.example:9001", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "/keys/priv.pem", cfg.PrivateKeyPath)
		assert.Equal(t, "/keys/pub.pem", cfg.PublicKeyPath)
		assert.Equal(t, "issuer", cfg.Issuer)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 10*time.Minute, cfg.ResetTokenTTL)
		assert.Equal(t, 24*time.Hour, cfg.InviteTTL)
		assert.Equal(t, time.Minute, cfg.OTPTTL)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, "https://app/reset?t=", cfg.ResetURL)
		assert.Equal(t, "https://app/invite?t=", cfg.InviteURL)
		assert.Equal(t, "aws", cfg.Notifier)
		assert.Equal(t, "no-reply@example.com", cfg.SESFrom)
		assert.Equal(t, "eu-west-1", cfg.AWSRegion)
		assert.Equal(t, "http://localstack:4566", cfg.AWSEndpoint)
		assert.Equal(t, "AKIA", cfg.AWSAccessKeyID)
		assert.Equal(t, "secret", cfg.AWSSecretKey)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.False(t, cfg.Migrate)
		assert.Equal(t, "memory", cfg.Storage)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"issuer": "only-this"})

		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		want := defaults()
		want.Issuer = "only-this"
		assert.Equal(t, want, cfg)
	})

	t.Run("env var names the file", func(t *testing.T) {
		t.Setenv("TENANTAUTH_CONFIG", pathFlag)

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "issuer", cfg.Issuer)
	})

	t.Run("no config and no flags → no changes", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		assert.Error(t, parseJson(cfg, []string{"-config", bad}))
	})

	t.Run("invalid duration → error", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "dur.json", map[string]any{"otp_ttl": "soon"})

		cfg := &Config{}
		assert.Error(t, parseJson(cfg, []string{"-config", bad}))
	})
}
