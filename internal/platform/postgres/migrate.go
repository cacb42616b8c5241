package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// slogGooseLogger adapts goose's logger interface to slog so migration
// output lands in the structured log stream.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error("migration failure", "message", fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info("migration", "message", fmt.Sprintf(format, v...))
}

// RunMigrations applies all pending schema migrations embedded in the
// binary. It is safe to call on every startup; goose tracks the applied
// version in the database.
func RunMigrations(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "migrations"))

	goose.SetLogger(&slogGooseLogger{})
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	start := time.Now()
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	log.Info("migrations applied",
		slog.Int64("version", version),
		slog.Duration("duration", time.Since(start)))
	return nil
}
