package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/tradeauth/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-t", "-d", "-s", "-r", "-q", "-b", "-i", "-l", "-f", "-x"}

// parseFlags applies command-line flags, the last configuration layer.
//
//	-a string     HTTP bind address
//	-g string     gRPC health bind address
//	-t string     database driver (sqlite|pgx)
//	-d string     database DSN
//	-s duration   session lifetime, e.g. 168h
//	-r duration   password reset token lifetime
//	-q float      login attempts per second per client
//	-b int        login burst per client
//	-i duration   gRPC health check interval
//	-l string     log level
//	-f string     log format (json|text)
//	-x            expose reset tokens in API responses
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("tradeauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDriver, "t", config.DatabaseDriver, "database driver (sqlite|pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.SessionTTL, "s", config.SessionTTL, "session lifetime")
	fs.DurationVar(&config.ResetTokenTTL, "r", config.ResetTokenTTL, "password reset token lifetime")
	fs.Float64Var(&config.LoginRateLimit, "q", config.LoginRateLimit, "login attempts per second per client")
	fs.IntVar(&config.LoginBurst, "b", config.LoginBurst, "login burst per client")
	fs.DurationVar(&config.HealthCheckInterval, "i", config.HealthCheckInterval, "health check interval")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json|text)")
	fs.BoolVar(&config.ExposeResetTokens, "x", config.ExposeResetTokens, "expose reset tokens in responses")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}
}
