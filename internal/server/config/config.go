// Package config handles configuration for the tradeauth server: built-in
// defaults, a dotenv file plus TRADEAUTH_* environment variables, an optional
// JSON file and finally command-line flags, each layer overriding the last.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the tradeauth server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses of the REST API and the gRPC health endpoint.
//   - DatabaseDriver: "sqlite" (embedded file, default) or "pgx" (PostgreSQL).
//   - DatabaseDSN: data source name for the chosen driver.
//   - SessionTTL: lifetime of a login session.
//   - ResetTokenTTL: lifetime of a password reset token.
//   - LoginRateLimit / LoginBurst: per-client token bucket for login attempts.
//   - HealthCheckInterval: how often the gRPC health status re-pings the database.
//   - LogLevel / LogFormat: slog level (debug|info|warn|error) and handler (json|text).
//   - ExposeResetTokens: return reset tokens in API responses. Development only.
type Config struct {
	HTTPAddr            string
	GRPCAddr            string
	DatabaseDriver      string
	DatabaseDSN         string
	SessionTTL          time.Duration
	ResetTokenTTL       time.Duration
	LoginRateLimit      float64
	LoginBurst          int
	HealthCheckInterval time.Duration
	LogLevel            string
	LogFormat           string
	ExposeResetTokens   bool
}

const DefaultSQLiteDSN = "file:tradeauth.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = DefaultSQLiteDSN
	c.SessionTTL = 7 * 24 * time.Hour
	c.ResetTokenTTL = time.Hour
	c.LoginRateLimit = 1
	c.LoginBurst = 5
	c.HealthCheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ExposeResetTokens = false
}

// LoadConfig builds a Config from os.Args and the process environment.
// Malformed input (unreadable files, bad values) panics, as the server cannot
// start with a half-applied configuration.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, args)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("reset token TTL must be positive, got %s", c.ResetTokenTTL)
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("health check interval must be positive, got %s", c.HealthCheckInterval)
	}
	return nil
}
