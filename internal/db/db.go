package db

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects with the requested driver ("pgx" or "sqlite"), applies
// pending migrations and returns the handle the rest of the app injects.
func Open(driver, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	switch driver {
	case "sqlite":
		// A single connection keeps in-memory databases coherent and
		// sidesteps sqlite's writer lock.
		conn.SetMaxOpenConns(1)
	default:
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(time.Hour)
		conn.SetConnMaxIdleTime(30 * time.Minute)
	}

	if err := Migrate(conn, driver); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Connected to database (driver=%s)", driver)
	return conn, nil
}

// Migrate brings the schema up to date from the embedded migration files.
func Migrate(conn *sqlx.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("unable to load migrations: %w", err)
	}

	m, err := newMigrator(conn, driver, src)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func newMigrator(conn *sqlx.DB, driver string, src source.Driver) (*migrate.Migrate, error) {
	switch driver {
	case "sqlite":
		d, err := migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("preparing sqlite migrator: %w", err)
		}
		return migrate.NewWithInstance("iofs", src, "sqlite", d)
	default:
		d, err := migratepgx.WithInstance(conn.DB, &migratepgx.Config{})
		if err != nil {
			return nil, fmt.Errorf("preparing postgres migrator: %w", err)
		}
		return migrate.NewWithInstance("iofs", src, "pgx", d)
	}
}
