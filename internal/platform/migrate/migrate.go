// Package migrate applies the embedded goose migrations for the configured dialect.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"bloodbank/internal/platform/database"
	"bloodbank/migrations"

	"github.com/pressly/goose/v3"
)

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// Up applies all pending migrations for the dialect.
func Up(ctx context.Context, db *sql.DB, dialect database.Dialect, logger *slog.Logger) error {
	return withGoose(dialect, logger, func(dir string) error {
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, dialect database.Dialect, logger *slog.Logger) (int64, error) {
	var version int64
	err := withGoose(dialect, logger, func(string) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

func withGoose(dialect database.Dialect, logger *slog.Logger, fn func(dir string) error) error {
	dir, gooseDialect, err := directoryFor(dialect)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(newSlogAdapter(logger))
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return fn(dir)
}

func directoryFor(dialect database.Dialect) (dir, gooseDialect string, err error) {
	switch dialect {
	case database.Postgres:
		return migrations.PostgresDir, "postgres", nil
	case database.SQLite:
		return migrations.SQLiteDir, "sqlite3", nil
	default:
		return "", "", fmt.Errorf("no migrations for dialect %q", dialect.Name)
	}
}

// slogAdapter routes goose's Printf-style output through slog.
type slogAdapter struct {
	log *slog.Logger
}

func newSlogAdapter(log *slog.Logger) goose.Logger {
	return &slogAdapter{log: log}
}

func (a *slogAdapter) Fatalf(format string, v ...any) {
	a.log.Error(fmt.Sprintf(format, v...), "component", "migrate")
}

func (a *slogAdapter) Printf(format string, v ...any) {
	a.log.Info(fmt.Sprintf(format, v...), "component", "migrate")
}
