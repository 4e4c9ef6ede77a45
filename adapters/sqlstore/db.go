package sqlstore

import (
	"context"
	"strings"

	"gobenford/internal/errors"
	"gobenford/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the run store and applies migrations
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	dsn := url
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "_pragma=") {
			dsn += separator(dsn) + "_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
	default:
		return nil, errors.ConfigInvalid("unsupported database driver: " + driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	// SQLite serializes writers; an in-memory database only exists on its own connection.
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func separator(dsn string) string {
	if strings.Contains(dsn, "?") {
		return "&"
	}
	return "?"
}
