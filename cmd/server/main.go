package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kindlyhq/kindly-api/internal/config"
	"github.com/kindlyhq/kindly-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	ctx := context.Background()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	return app.Run(ctx)
}
