package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tradeauth/internal/flagx"
	"github.com/dmitrijs2005/tradeauth/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// "168h"-style strings or integer nanoseconds. Keys missing from the file keep
// the value of the previous layer.
type JsonConfig struct {
	HTTPAddr            string         `json:"http_addr"`
	GRPCAddr            string         `json:"grpc_addr"`
	DatabaseDriver      string         `json:"database_driver"`
	DatabaseDSN         string         `json:"database_dsn"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	ResetTokenTTL       timex.Duration `json:"reset_token_ttl"`
	LoginRateLimit      float64        `json:"login_rate_limit"`
	LoginBurst          int            `json:"login_burst"`
	HealthCheckInterval timex.Duration `json:"health_check_interval"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
	ExposeResetTokens   bool           `json:"expose_reset_tokens"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing is loaded; an unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		HTTPAddr:            config.HTTPAddr,
		GRPCAddr:            config.GRPCAddr,
		DatabaseDriver:      config.DatabaseDriver,
		DatabaseDSN:         config.DatabaseDSN,
		SessionTTL:          timex.Duration{Duration: config.SessionTTL},
		ResetTokenTTL:       timex.Duration{Duration: config.ResetTokenTTL},
		LoginRateLimit:      config.LoginRateLimit,
		LoginBurst:          config.LoginBurst,
		HealthCheckInterval: timex.Duration{Duration: config.HealthCheckInterval},
		LogLevel:            config.LogLevel,
		LogFormat:           config.LogFormat,
		ExposeResetTokens:   config.ExposeResetTokens,
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.GRPCAddr = c.GRPCAddr
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SessionTTL = c.SessionTTL.Duration
	config.ResetTokenTTL = c.ResetTokenTTL.Duration
	config.LoginRateLimit = c.LoginRateLimit
	config.LoginBurst = c.LoginBurst
	config.HealthCheckInterval = c.HealthCheckInterval.Duration
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.ExposeResetTokens = c.ExposeResetTokens
}
