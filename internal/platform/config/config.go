// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pstrings "bloodbank/pkg/platform/strings"
)

// DevJWTSecret is the signing key used when none is configured. It is
// refused in production.
const DevJWTSecret = "dev-secret-key-change-in-production"

// Config is the complete server configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Seed      SeedConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// TrustedProxies lists CIDRs whose X-Forwarded-For header is honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// DatabaseConfig selects the store backend. An empty URL keeps everything
// in memory.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// RedisConfig configures the revocation list backend. An empty URL keeps
// revocations in memory.
type RedisConfig struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	StatsInterval time.Duration `env:"REDIS_STATS_INTERVAL" envDefault:"15s"`
}

// AuthConfig configures token issuing and revocation cleanup.
type AuthConfig struct {
	JWTSecretKey              string        `env:"JWT_SECRET_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer                 string        `env:"JWT_ISSUER" envDefault:"bloodbank"`
	JWTAudience               string        `env:"JWT_AUDIENCE" envDefault:"bloodbank-api"`
	TokenTTL                  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RevocationCleanupInterval time.Duration `env:"REVOCATION_CLEANUP_INTERVAL" envDefault:"5m"`
}

// SeedConfig controls the startup seeder.
type SeedConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"Admin123!"`
	DemoDonors    bool   `env:"SEED_DEMO_DONORS" envDefault:"false"`
}

// KafkaConfig enables the Kafka audit sink when Brokers is set.
type KafkaConfig struct {
	Brokers         string        `env:"KAFKA_BROKERS"`
	AuditTopic      string        `env:"AUDIT_TOPIC" envDefault:"bloodbank.audit"`
	Acks            string        `env:"KAFKA_ACKS" envDefault:"all"`
	Retries         int           `env:"KAFKA_RETRIES" envDefault:"3"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"30s"`
	AuditBuffer     int           `env:"AUDIT_BUFFER" envDefault:"256"`
}

// BrokerList splits Brokers on commas, dropping blanks and duplicates.
func (k KafkaConfig) BrokerList() []string {
	return pstrings.SplitList(k.Brokers)
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.BrokerList()) > 0
}

// RateLimitConfig bounds unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	Enabled      bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	AuthRequests int           `env:"RATE_LIMIT_AUTH_REQUESTS" envDefault:"20"`
	AuthWindow   time.Duration `env:"RATE_LIMIT_AUTH_WINDOW" envDefault:"1m"`
}

// Load reads a .env file when present, then parses the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Server.TrustedProxies = pstrings.DedupeAndTrim(cfg.Server.TrustedProxies)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects settings that cannot work or are unsafe.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && c.Auth.JWTSecretKey == DevJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be set in production"))
	}
	if strings.TrimSpace(c.Auth.JWTSecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY must not be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.AuthRequests <= 0 || c.RateLimit.AuthWindow <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_REQUESTS and RATE_LIMIT_AUTH_WINDOW must be positive"))
	}
	if c.Kafka.Enabled() && strings.TrimSpace(c.Kafka.AuditTopic) == "" {
		errs = append(errs, errors.New("AUDIT_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
