package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	dbpkg "github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/logging"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

func sourceDir(dialect dbpkg.Dialect) (string, error) {
	switch dialect {
	case dbpkg.DialectSQLite:
		return "migrations/sqlite", nil
	case dbpkg.DialectPostgres:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("unsupported dialect: %q", string(dialect))
	}
}

func newMigrator(db *sql.DB, dialect dbpkg.Dialect) (*migrate.Migrate, error) {
	dir, err := sourceDir(dialect)
	if err != nil {
		return nil, err
	}

	sourceDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case dbpkg.DialectSQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// AutoMigrate runs all pending migrations
func AutoMigrate(db *sql.DB, dialect dbpkg.Dialect, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	logger.Info("running database migrations", "dialect", dialect)

	m, err := newMigrator(db, dialect)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d - manual intervention required", version)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database is up to date", "version", version)
	} else {
		newVersion, _, _ := m.Version()
		logger.Info("migrations complete", "from", version, "to", newVersion)
	}
	return nil
}

// MigrateDown rolls back the last migration
func MigrateDown(db *sql.DB, dialect dbpkg.Dialect, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}

	m, err := newMigrator(db, dialect)
	if err != nil {
		return err
	}

	version, _, _ := m.Version()

	err = m.Steps(-1)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("rollback complete", "from", version, "to", newVersion)
	return nil
}

// ListMigrations lists the available up migrations for a dialect
func ListMigrations(dialect dbpkg.Dialect) ([]string, error) {
	dir, err := sourceDir(dialect)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			migrations = append(migrations, entry.Name())
		}
	}

	sort.Strings(migrations)
	return migrations, nil
}
