package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huandu/go-sqlbuilder"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Driver is a supported database/sql driver name
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

// DriverFor picks the driver from the DSN. URLs starting with postgres://
// or postgresql:// use PostgreSQL, anything else is an SQLite file path.
func DriverFor(dsn string) Driver {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Flavor returns the SQL builder flavor for the driver
func (d Driver) Flavor() sqlbuilder.Flavor {
	if d == Postgres {
		return sqlbuilder.PostgreSQL
	}
	return sqlbuilder.SQLite
}

func connection(ctx context.Context, dsn string) (*sql.DB, Driver, error) {
	driver := DriverFor(dsn)

	var db *sql.DB
	var err error
	switch driver {
	case Postgres:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, driver, err
		}
		db.SetMaxOpenConns(20)           // Allow multiple concurrent readers
		db.SetMaxIdleConns(10)           // Keep some connections ready
		db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
		db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	default:
		// Enable foreign keys and WAL mode
		db, err = sql.Open("sqlite", fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dsn))
		if err != nil {
			return nil, driver, err
		}
		db.SetMaxOpenConns(4)            // Allow multiple concurrent readers
		db.SetMaxIdleConns(2)            // Keep some connections ready
		db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
		db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour
	}

	// The database may still be starting when we are, so retry the first ping
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err = backoff.RetryNotify(func() error {
		return db.PingContext(ctx)
	}, policy, func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"driver": driver,
			"error":  err,
			"wait":   wait,
		}).Warn("Database not reachable, retrying")
	})
	if err != nil {
		db.Close()
		return nil, driver, fmt.Errorf("failed to reach database: %w", err)
	}

	if driver == SQLite {
		// Configure some additional pragmas for better read performance
		if _, err := db.ExecContext(ctx, `
			PRAGMA synchronous = NORMAL;
			PRAGMA cache_size = -32000; -- 32MB cache
			PRAGMA temp_store = MEMORY;
		`); err != nil {
			db.Close()
			return nil, driver, fmt.Errorf("failed to set pragmas: %w", err)
		}
	}

	return db, driver, nil
}
