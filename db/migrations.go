package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var fs embed.FS

func migrator(dsn string) (*migrate.Migrate, error) {
	driver := DriverFor(dsn)

	// Create a new source instance using the embedded migrations for the driver
	d, err := iofs.New(fs, "migrations/"+string(driver))
	if err != nil {
		return nil, err
	}

	url := dsn
	if driver == SQLite {
		url = "sqlite://" + dsn
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, url)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}
	return m, nil
}

// Migrate runs the database migrations using golang-migrate
func Migrate(dsn string) error {
	log.WithField("driver", DriverFor(dsn)).Info("Running migrations")

	m, err := migrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Rollback reverts the last applied migration
func Rollback(dsn string) error {
	log.WithField("driver", DriverFor(dsn)).Info("Rolling back last migration")

	m, err := migrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
