package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Journal backends
const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DB"`
	JWT      JWTConfig      `yaml:"jwt" envconfig:"JWT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOG"`
	Ledger   LedgerConfig   `yaml:"ledger" envconfig:"LEDGER"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	NATS     NATSConfig     `yaml:"nats" envconfig:"NATS"`
	Auth     AuthConfig     `yaml:"auth" envconfig:"AUTH"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname" envconfig:"NAME"`
	SSLMode         string `yaml:"sslmode" envconfig:"SSLMODE"`
	MaxIdleConns    int    `yaml:"max_idle_conns" split_words:"true"`
	MaxOpenConns    int    `yaml:"max_open_conns" split_words:"true"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" split_words:"true"`
}

type JWTConfig struct {
	Secret                string `yaml:"secret"`
	AccessTokenExpiration string `yaml:"access_token_expiration" split_words:"true"`
	Issuer                string `yaml:"issuer"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LedgerConfig selects the journal backend and the bootstrap identities
type LedgerConfig struct {
	AdminAddress string   `yaml:"admin_address" split_words:"true"`
	Verifiers    []string `yaml:"verifiers"`
	Journal      string   `yaml:"journal"`
	// SyncInterval is how often a postgres-backed registry reads entries
	// appended by other replicas; zero disables polling
	SyncInterval string `yaml:"sync_interval" split_words:"true"`
}

// RedisConfig is optional; an empty Addr keeps login challenges in memory
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig is optional; an empty URL disables the event sink
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix" split_words:"true"`
}

type AuthConfig struct {
	NonceTTL string `yaml:"nonce_ttl" envconfig:"NONCE_TTL"`
}

// LoadConfig loads configuration from .env, a YAML file and environment
// variables, in increasing order of precedence
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if file, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "transcriptledger"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "transcriptledger"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Ledger.Journal = JournalMemory
	config.Ledger.SyncInterval = "5s"

	config.NATS.SubjectPrefix = "transcriptledger.events"

	config.Auth.NonceTTL = "5m"
}

// Validate ensures that the configuration is valid
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(c.Auth.NonceTTL); err != nil {
		return fmt.Errorf("invalid auth nonce TTL format: %w", err)
	}

	if !isAddress(c.Ledger.AdminAddress) {
		return fmt.Errorf("ledger admin address %q is not a valid account address", c.Ledger.AdminAddress)
	}
	for _, v := range c.Ledger.Verifiers {
		if !isAddress(v) {
			return fmt.Errorf("ledger verifier %q is not a valid account address", v)
		}
	}

	switch strings.ToLower(c.Ledger.Journal) {
	case JournalMemory:
	case JournalPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres journal")
		}
		if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection max lifetime: %w", err)
		}
		if d, err := time.ParseDuration(c.Ledger.SyncInterval); err != nil || d < 0 {
			return fmt.Errorf("invalid ledger sync interval %q", c.Ledger.SyncInterval)
		}
	default:
		return fmt.Errorf("unknown ledger journal %q (must be %q or %q)", c.Ledger.Journal, JournalMemory, JournalPostgres)
	}

	return nil
}

func isAddress(s string) bool {
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}

// UsePostgres reports whether the journal lives in PostgreSQL
func (c *Config) UsePostgres() bool {
	return strings.EqualFold(c.Ledger.Journal, JournalPostgres)
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
