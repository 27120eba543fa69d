package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationFiles embed.FS

// UsersTable is the table the API serves
const UsersTable = "users"

// requiredColumns must exist on the users table for the API to work
var requiredColumns = []string{"userId", "firstName", "lastName", "email"}

// MigrationManager handles database migrations
type MigrationManager struct {
	connector *SQLConnector
	logger    *logrus.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(connector *SQLConnector, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &MigrationManager{
		connector: connector,
		logger:    logger,
	}
}

// MigrationInfo contains information about a migration
type MigrationInfo struct {
	Version   uint
	Dirty     bool
	Applied   bool
	Timestamp time.Time
}

// RunMigrations executes all pending migrations
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	m.logger.Info("Starting database migrations...")

	return m.withMigrate(ctx, func(mg *migrate.Migrate) error {
		currentVersion, dirty, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		if dirty {
			m.logger.WithField("version", currentVersion).Warn("Database is in dirty state, attempting to force version")
			if err := mg.Force(int(currentVersion)); err != nil {
				return fmt.Errorf("failed to force migration version: %w", err)
			}
		}

		m.logger.WithField("current_version", currentVersion).Info("Current migration version")

		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		newVersion, _, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get new migration version: %w", err)
		}

		m.logger.WithField("new_version", newVersion).Info("Migrations completed successfully")
		return nil
	})
}

// RollbackMigration rolls back the last migration
func (m *MigrationManager) RollbackMigration(ctx context.Context) error {
	m.logger.Info("Rolling back last migration...")

	return m.withMigrate(ctx, func(mg *migrate.Migrate) error {
		currentVersion, _, err := mg.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return fmt.Errorf("no migrations to rollback")
			}
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		m.logger.WithField("current_version", currentVersion).Info("Rolling back from version")

		if err := mg.Steps(-1); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}

		m.logger.Info("Rollback completed successfully")
		return nil
	})
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus(ctx context.Context) (*MigrationInfo, error) {
	info := &MigrationInfo{Timestamp: time.Now()}

	err := m.withMigrate(ctx, func(mg *migrate.Migrate) error {
		version, dirty, err := mg.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return nil
			}
			return fmt.Errorf("failed to get migration version: %w", err)
		}

		info.Version = version
		info.Dirty = dirty
		info.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// ValidateSchema checks that the users table exists with the columns the API reads and writes
func (m *MigrationManager) ValidateSchema(ctx context.Context) error {
	m.logger.Info("Validating database schema...")

	session, err := m.connector.Open(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	query, args, err := session.Builder().Select("*").From(UsersTable).Where("1 = 0").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build schema query: %w", err)
	}

	rows, err := session.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("expected table %s not found: %w", UsersTable, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read %s columns: %w", UsersTable, err)
	}

	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return fmt.Errorf("table %s is missing column %s", UsersTable, col)
		}
	}

	m.logger.Info("Schema validation completed successfully")
	return nil
}

// withMigrate opens a dedicated session, builds a migrate instance over the
// embedded migrations for the connector's dialect, and runs fn with it
func (m *MigrationManager) withMigrate(ctx context.Context, fn func(*migrate.Migrate) error) error {
	session, err := m.connector.Open(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	dialect := m.connector.Dialect()

	source, err := iofs.New(migrationFiles, path.Join("migrations", dialect.Name()))
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := dialect.MigrationDriver(session.DB.DB)
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, dialect.Name(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer mg.Close()

	return fn(mg)
}
