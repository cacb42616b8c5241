package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kindlyhq/kindly-api/internal/config"
	"github.com/kindlyhq/kindly-api/internal/platform/postgres"
	"github.com/kindlyhq/kindly-api/internal/service/auth"
	"github.com/kindlyhq/kindly-api/internal/store"
)

// application bundles the server's dependencies so the router and server
// setup can be expressed as methods.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore  store.TaskStore
	userStore  store.UserStore
	jwtService auth.JWTService
	hasher     *auth.BcryptHasher
}

// newApplication runs migrations and wires the stores and services.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
) (*application, error) {
	if err := postgres.RunMigrations(ctx, db, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("create JWT service: %w", err)
	}

	return &application{
		config:     cfg,
		logger:     log,
		db:         db,
		taskStore:  postgres.NewPostgresTaskStore(db, log),
		userStore:  postgres.NewPostgresUserStore(db, log),
		jwtService: jwtService,
		hasher:     auth.NewBcryptHasher(cfg.Auth.BcryptCost),
	}, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}
