// Package config loads runtime configuration for the tradeauth CLI.
//
// Sources, later overriding earlier:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config.
//  3. TRADEAUTH_SERVER_URL, TRADEAUTH_STATE_DSN and TRADEAUTH_REQUEST_TIMEOUT.
//  4. Command-line flags, applied by the cli package.
//
// JSON durations accept "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "state_dsn": "file:tradeauth-cli.db",
//	  "request_timeout": "10s"
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/tradeauth/internal/timex"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the tradeauth HTTP API.
//   - StateDSN: SQLite DSN of the local file that keeps the session token.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	StateDSN       string
	RequestTimeout time.Duration
}

const envPrefix = "TRADEAUTH_"

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.StateDSN = "file:tradeauth-cli.db?_pragma=busy_timeout(5000)"
	c.RequestTimeout = 10 * time.Second
}

type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	StateDSN       string         `json:"state_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// Load applies defaults, the JSON file at path (skipped when empty) and the
// environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := cfg.parseJson(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.parseEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseJson(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	jc := JsonConfig{
		ServerURL:      c.ServerURL,
		StateDSN:       c.StateDSN,
		RequestTimeout: timex.Duration{Duration: c.RequestTimeout},
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.ServerURL = jc.ServerURL
	c.StateDSN = jc.StateDSN
	c.RequestTimeout = jc.RequestTimeout.Duration
	return nil
}

func (c *Config) parseEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "SERVER_URL"); ok && v != "" {
		c.ServerURL = v
	}
	if v, ok := lookup(envPrefix + "STATE_DSN"); ok && v != "" {
		c.StateDSN = v
	}
	if v, ok := lookup(envPrefix + "REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		c.RequestTimeout = d
	}
	return nil
}
