// Package server wires the cmsauth server together: it opens the credential
// store, runs migrations, builds the authenticator and the auth gate, and
// serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/cmsauth/internal/dbx"
	"github.com/dmitrijs2005/cmsauth/internal/logging"
	"github.com/dmitrijs2005/cmsauth/internal/server/auth"
	"github.com/dmitrijs2005/cmsauth/internal/server/config"
	"github.com/dmitrijs2005/cmsauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmsauth/internal/server/rest"
	"github.com/dmitrijs2005/cmsauth/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, driver, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewRepositoryManager(driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	app, err := newApp(c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewHasher(auth.HashParams{
		Memory:     c.Argon2Memory,
		Iterations: c.Argon2Iterations,
		Threads:    c.Argon2Threads,
		SaltLength: auth.DefaultHashParams().SaltLength,
		KeyLength:  auth.DefaultHashParams().KeyLength,
	})

	us, err := services.NewUserService(db, rm, hasher, codec,
		services.WithLogger(logger),
		services.WithStoreTimeout(c.StoreTimeout),
		services.WithDefaultRole(c.DefaultRole),
	)
	if err != nil {
		return nil, err
	}

	srv := rest.NewServer(c.EndpointAddrHTTP, logger, us, auth.NewGate(codec),
		rest.WithShutdownTimeout(c.ShutdownTimeout))

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// Server exposes the HTTP adapter so resource modules can mount routes on
// its protected group before Run.
func (app *App) Server() *rest.Server {
	return app.server
}

// Run blocks until SIGINT, SIGTERM, SIGQUIT or ctx cancellation, then stops
// the HTTP server and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	err := app.server.Run(ctx)

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "closing database", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
