package db

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/logger"
)

// RunMigrations applies all pending SQL migrations from dir against dsn.
// A database that is already up to date is not an error.
func RunMigrations(dsn, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}

	m, err := migrate.New("file://"+abs, dsn)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations_up_to_date", nil)
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	logger.Info("migrations_applied", map[string]any{
		"version": version,
		"dirty":   dirty,
	})
	return nil
}
