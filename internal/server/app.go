// Package server wires the tradeauth server together: it opens the store,
// applies migrations, builds the services and runs the HTTP API and the gRPC
// health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tradeauth/internal/dbx"
	"github.com/dmitrijs2005/tradeauth/internal/logging"
	"github.com/dmitrijs2005/tradeauth/internal/server/config"
	gs "github.com/dmitrijs2005/tradeauth/internal/server/grpc"
	"github.com/dmitrijs2005/tradeauth/internal/server/metrics"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradeauth/internal/server/rest"
	"github.com/dmitrijs2005/tradeauth/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.HTTPServer
	grpc   *gs.GRPCServer
}

// NewApp opens the database, runs migrations and builds every component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	db, dialect, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	m := metrics.New()
	auth := services.NewAuthService(db, rm, c, logger, m)
	resets := services.NewResetService(db, rm, c, logger, m)

	h := rest.NewHandler(auth, resets, db, m, logger, rest.Options{
		LoginRateLimit:    c.LoginRateLimit,
		LoginBurst:        c.LoginBurst,
		ExposeResetTokens: c.ExposeResetTokens,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   rest.NewHTTPServer(c.HTTPAddr, h.Router(), logger),
		grpc:   gs.NewGRPCServer(c.GRPCAddr, logger, db, c.HealthCheckInterval),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, "HTTP server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "gRPC server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
