// Package cli implements the tradeauth command-line client.
package cli

import (
	"bufio"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeauth/internal/client/client"
	"github.com/dmitrijs2005/tradeauth/internal/client/config"
	"github.com/dmitrijs2005/tradeauth/internal/client/services"
)

// opener builds the AuthService for one command run. The returned func
// releases its resources.
type opener func(ctx context.Context, cfg *config.Config) (services.AuthService, func() error, error)

// getPassword is swapped in tests.
var getPassword = GetPassword

type app struct {
	open opener

	configFile string
	serverURL  string
	stateDSN   string
	timeout    time.Duration

	cfg    *config.Config
	reader *bufio.Reader
}

// NewRootCmd creates the root command for the tradeauth CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(openService)
}

func newRootCmd(open opener) *cobra.Command {
	a := &app{open: open}

	cmd := &cobra.Command{
		Use:   "tradeauth",
		Short: "tradeauth - account and session client",
		Long: `tradeauth talks to the tradeauth server: it registers accounts,
logs in and out, and drives the password reset flow. The current session
is kept in a local SQLite file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "JSON config file path")
	pf.StringVar(&a.serverURL, "server", "", "server base URL")
	pf.StringVar(&a.stateDSN, "state", "", "local state SQLite DSN")
	pf.DurationVar(&a.timeout, "timeout", 0, "per-request timeout")

	cmd.AddCommand(
		a.newRegisterCmd(),
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoAmICmd(),
		a.newResetRequestCmd(),
		a.newResetConfirmCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("server") {
		cfg.ServerURL = a.serverURL
	}
	if pf.Changed("state") {
		cfg.StateDSN = a.stateDSN
	}
	if pf.Changed("timeout") {
		cfg.RequestTimeout = a.timeout
	}
	a.cfg = cfg
	a.reader = bufio.NewReader(cmd.InOrStdin())
	return nil
}

// withService runs fn with a freshly opened AuthService and releases it
// afterwards, whatever fn returns.
func (a *app) withService(cmd *cobra.Command, fn func(svc services.AuthService) error) (err error) {
	svc, closeFn, err := a.open(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); err == nil {
			err = cerr
		}
	}()
	return fn(svc)
}

func openService(ctx context.Context, cfg *config.Config) (services.AuthService, func() error, error) {
	db, err := client.OpenStateDB(ctx, cfg.StateDSN)
	if err != nil {
		return nil, nil, err
	}
	api := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	return services.NewAuthService(api, db), db.Close, nil
}
