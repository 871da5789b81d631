package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/tradeauth/internal/flagx"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "TRADEAUTH_"

const defaultEnvFile = ".env"

// parseEnv loads a dotenv file into the process environment and then applies
// TRADEAUTH_* variables. The file is taken from -env; without the flag a
// missing ./.env is silently skipped. Variables already set in the
// environment win over the file.
func parseEnv(config *Config, args []string) {
	path := flagx.EnvFileFlag(args)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("load env file %s: %w", path, err))
		}
	}

	applyEnv(config, os.LookupEnv)
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_ADDR", &config.GRPCAddr)
	str("DATABASE_DRIVER", &config.DatabaseDriver)
	str("DATABASE_DSN", &config.DatabaseDSN)
	dur("SESSION_TTL", &config.SessionTTL)
	dur("RESET_TOKEN_TTL", &config.ResetTokenTTL)
	dur("HEALTH_CHECK_INTERVAL", &config.HealthCheckInterval)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)

	if v, ok := lookup(EnvPrefix + "LOGIN_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%sLOGIN_RATE_LIMIT: %w", EnvPrefix, err))
		}
		config.LoginRateLimit = f
	}
	if v, ok := lookup(EnvPrefix + "LOGIN_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%sLOGIN_BURST: %w", EnvPrefix, err))
		}
		config.LoginBurst = n
	}
	if v, ok := lookup(EnvPrefix + "EXPOSE_RESET_TOKENS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%sEXPOSE_RESET_TOKENS: %w", EnvPrefix, err))
		}
		config.ExposeResetTokens = b
	}
}
