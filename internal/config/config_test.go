package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminHex    = "0x1000000000000000000000000000000000000001"
	verifierHex = "0x2000000000000000000000000000000000000002"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsAndYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: file-secret
ledger:
  admin_address: "`+adminHex+`"
  verifiers:
    - "`+verifierHex+`"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, "1h", cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, JournalMemory, cfg.Ledger.Journal)
	assert.Equal(t, []string{verifierHex}, cfg.Ledger.Verifiers)
	assert.Equal(t, "transcriptledger.events", cfg.NATS.SubjectPrefix)
	assert.False(t, cfg.UsePostgres())
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: file-secret
ledger:
  admin_address: "`+adminHex+`"
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("DB_NAME", "ledger_test")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("LEDGER_JOURNAL", "postgres")
	t.Setenv("LEDGER_VERIFIERS", verifierHex)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("NATS_SUBJECT_PREFIX", "ledger")
	t.Setenv("AUTH_NONCE_TTL", "2m")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "ledger_test", cfg.Database.DBName)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, []string{verifierHex}, cfg.Ledger.Verifiers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "ledger", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "2m", cfg.Auth.NonceTTL)
	assert.Contains(t, cfg.GetPostgresConnectionString(), "/ledger_test?sslmode=disable")
}

func TestLoadConfigMissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LEDGER_ADMIN_ADDRESS", adminHex)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, adminHex, cfg.Ledger.AdminAddress)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.JWT.Secret = "s"
		cfg.Ledger.AdminAddress = adminHex
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT secret is required"},
		{"bad expiration", func(c *Config) { c.JWT.AccessTokenExpiration = "soon" }, "access token expiration"},
		{"bad nonce ttl", func(c *Config) { c.Auth.NonceTTL = "x" }, "nonce TTL"},
		{"missing admin", func(c *Config) { c.Ledger.AdminAddress = "" }, "admin address"},
		{"zero admin", func(c *Config) { c.Ledger.AdminAddress = "0x0000000000000000000000000000000000000000" }, "admin address"},
		{"bad verifier", func(c *Config) { c.Ledger.Verifiers = []string{"nope"} }, "verifier"},
		{"unknown journal", func(c *Config) { c.Ledger.Journal = "badger" }, "unknown ledger journal"},
		{"postgres without host", func(c *Config) {
			c.Ledger.Journal = JournalPostgres
			c.Database.Host = ""
		}, "database host"},
		{"postgres with bad sync interval", func(c *Config) {
			c.Ledger.Journal = JournalPostgres
			c.Ledger.SyncInterval = "-1s"
		}, "sync interval"},
		{"postgres with polling disabled", func(c *Config) {
			c.Ledger.Journal = JournalPostgres
			c.Ledger.SyncInterval = "0"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
