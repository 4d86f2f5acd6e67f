// internal/database/migration.go
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"label-service/internal/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded print_jobs schema. It opens its own
// connection so closing it leaves the application pool untouched.
type Migrator struct {
	databaseURL string
	logger      *zap.Logger
}

// NewMigrator creates a migrator for the configured database
func NewMigrator(cfg *config.Config, logger *zap.Logger) *Migrator {
	return &Migrator{
		databaseURL: cfg.GetDatabaseURL(),
		logger:      logger.With(zap.String("component", "migrator")),
	}
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.run("up", (*migrate.Migrate).Up)
}

// Down reverts every applied migration
func (m *Migrator) Down() error {
	return m.run("down", (*migrate.Migrate).Down)
}

// Version returns the applied schema version, 0 when nothing was applied
func (m *Migrator) Version() (uint, bool, error) {
	instance, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer m.close(instance)

	version, dirty, err := instance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) run(direction string, step func(*migrate.Migrate) error) error {
	instance, err := m.open()
	if err != nil {
		return err
	}
	defer m.close(instance)

	err = step(instance)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("Database schema up to date", zap.String("direction", direction))
		return nil
	case err != nil:
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, dirty, err := instance.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	m.logger.Info("Database migrations applied",
		zap.String("direction", direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	instance, err := migrate.NewWithSourceInstance("iofs", source, m.databaseURL)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return instance, nil
}

func (m *Migrator) close(instance *migrate.Migrate) {
	sourceErr, dbErr := instance.Close()
	if err := errors.Join(sourceErr, dbErr); err != nil {
		m.logger.Warn("Failed to close migrator", zap.Error(err))
	}
}
