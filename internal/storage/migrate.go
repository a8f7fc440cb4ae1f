package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// withMigrationDB opens the temporary database/sql connection goose needs,
// points goose at the embedded migrations, and runs fn.
func withMigrationDB(dsn string, fn func(*sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return fn(db)
}

// RunMigrations applies all pending database migrations.
func RunMigrations(ctx context.Context, dsn string) error {
	return withMigrationDB(dsn, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back the last applied migration.
func MigrateDown(ctx context.Context, dsn string) error {
	return withMigrationDB(dsn, func(db *sql.DB) error {
		if err := goose.DownContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		return nil
	})
}

// MigrateStatus prints the status of all migrations.
func MigrateStatus(ctx context.Context, dsn string) error {
	return withMigrationDB(dsn, func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("report migration status: %w", err)
		}
		return nil
	})
}
