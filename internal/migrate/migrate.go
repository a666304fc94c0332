// Package migrate applies the embedded goose migrations that create the
// snapshot, settings, job, and auth tables.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "github.com/glebarez/go-sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

// dialect resolves a storage driver name to the goose dialect, the
// migration directory for it, and the database/sql driver to open with.
func dialect(driver string) (gooseDialect, dir, sqlDriver string, err error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return "sqlite3", "migrations/sqlite", "sqlite", nil
	case "postgres", "pgx", "postgrespool":
		return "postgres", "migrations/postgres", "pgx", nil
	}
	return "", "", "", fmt.Errorf("unsupported driver for goose: %s", driver)
}

func open(driver, dsn string) (*sql.DB, string, error) {
	gd, dir, sqlDriver, err := dialect(driver)
	if err != nil {
		return nil, "", err
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect(gd); err != nil {
		return nil, "", err
	}

	if dsn == "" {
		dsn = "ziprates.db"
	}
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, "", err
	}
	return db, dir, nil
}

// Up applies all pending migrations.
func Up(ctx context.Context, driver, dsn string) error {
	db, dir, err := open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.UpContext(ctx, db, dir)
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, driver, dsn string) error {
	db, dir, err := open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.DownContext(ctx, db, dir)
}

// Status prints the applied/pending state of every migration.
func Status(ctx context.Context, driver, dsn string) error {
	db, dir, err := open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.Status(db, dir)
}
