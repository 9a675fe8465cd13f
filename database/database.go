// Package database opens the SQL store shared by accounts, history and the
// client register. SQLite is the default; PostgreSQL and MySQL are selected
// with database.driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	// Driver registration for database/sql.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/esime/ielec/config"
)

// Driver names as registered with database/sql.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// DB wraps a connection pool and rewrites "?" placeholders for the
// dialect in use, so callers write a single form of every query.
type DB struct {
	db     *sql.DB
	driver string
	path   string
}

// Open connects using the database section of the configuration and
// applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case "", SQLite:
		return OpenSQLite(ctx, cfg.Path)
	case Postgres, MySQL:
		dsn := cfg.DSN.Value()
		if cfg.Driver == MySQL {
			dsn = withParseTime(dsn)
		}
		sqlDB, err := sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("connecting to %s database: %w", cfg.Driver, err)
		}
		d := &DB{db: sqlDB, driver: cfg.Driver}
		if err := d.migrate(ctx); err != nil {
			sqlDB.Close()
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// OpenSQLite opens (creating if needed) a SQLite database file. The path
// ":memory:" gives a private in-memory database, which tests use.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
			if err != nil {
				return nil, fmt.Errorf("creating database: %w", err)
			}
			f.Close()
		}
	}

	sqlDB, err := sql.Open(SQLite, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{db: sqlDB, driver: SQLite, path: path}
	if err := d.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Driver returns the dialect name.
func (d *DB) Driver() string {
	return d.driver
}

// Path returns the SQLite file path, or "" for server databases.
func (d *DB) Path() string {
	return d.path
}

// SQL exposes the underlying pool.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// ExecContext runs a statement written with "?" placeholders.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.Rebind(query), args...)
}

// QueryContext runs a query written with "?" placeholders.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.Rebind(query), args...)
}

// QueryRowContext runs a single-row query written with "?" placeholders.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.Rebind(query), args...)
}

// Rebind converts "?" placeholders to "$1", "$2"... for PostgreSQL.
// Other dialects get the query unchanged.
func (d *DB) Rebind(query string) string {
	if d.driver != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// withParseTime makes the MySQL driver scan DATETIME columns into
// time.Time.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// NullString converts an empty string to a NULL column value.
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
