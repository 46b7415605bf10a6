// Package sqlstore persists the enriched record set in a SQL engine and
// pushes the aggregate group-bys down to it. Two drivers are supported: a
// shared MySQL server, and an embedded pure-Go SQLite database for
// single-machine runs.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/huandu/go-sqlbuilder"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Connect.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const mysqlParamStr string = "?parseTime=true"

// Connect opens the store. uri is a MySQL DSN for the mysql driver, or a
// database path for the sqlite driver (":memory:" for an in-memory store).
// The returned flavor selects the SQL dialect for query building.
func Connect(ctx context.Context, driver, uri string) (*sql.DB, sqlbuilder.Flavor, error) {
	switch driver {
	case DriverMySQL:
		db, err := sql.Open("mysql", uri+mysqlParamStr)
		if err != nil {
			return nil, 0, fmt.Errorf("connecting to MySQL DB: %w", err)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, 0, fmt.Errorf("checking MySQL DB connection: %w", err)
		}

		return db, sqlbuilder.MySQL, nil

	case DriverSQLite:
		db, err := sql.Open("sqlite", uri)
		if err != nil {
			return nil, 0, fmt.Errorf("opening SQLite DB: %w", err)
		}

		// A single connection keeps in-memory databases coherent; report
		// queries are serialized by the driver instead of the caller.
		db.SetMaxOpenConns(1)

		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout = 5000",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, 0, fmt.Errorf("applying %s: %w", pragma, err)
			}
		}

		return db, sqlbuilder.SQLite, nil

	default:
		return nil, 0, fmt.Errorf("unknown dataset driver [%s]", driver)
	}
}
