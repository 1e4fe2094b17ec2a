package db

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Opt defines a function type that applies a configuration to sqlx.DB.
type Opt func(*sqlx.DB)

// Driver picks the database driver for dsn: PostgreSQL URLs and keyword/value
// DSNs use pgx, anything else is treated as an SQLite file path.
func Driver(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// New connects to the database and applies the given options.
func New(driver string, dsn string, opts ...Opt) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Migrate applies the goose migrations in dir.
func Migrate(db *sqlx.DB, dir string) error {
	dialect := "sqlite3"
	if db.DriverName() == DriverPostgres {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.Up(db.DB, dir)
}

// MigrateFS applies the goose migrations found at the root of fsys. goose
// reads migrations from disk, so the *.sql files are copied to a temporary
// directory first.
func MigrateFS(db *sqlx.DB, fsys fs.FS) error {
	dir, err := os.MkdirTemp("", "migrations-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return err
		}
	}
	return Migrate(db, dir)
}

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(opts ...int) Opt {
	return func(db *sqlx.DB) {
		for _, opt := range opts {
			if opt > 0 {
				db.SetMaxOpenConns(opt)
				break
			}
		}
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(opts ...int) Opt {
	return func(db *sqlx.DB) {
		for _, opt := range opts {
			if opt > 0 {
				db.SetMaxIdleConns(opt)
				break
			}
		}
	}
}

// WithConnMaxLifetime sets the maximum connection lifetime.
func WithConnMaxLifetime(opts ...time.Duration) Opt {
	return func(db *sqlx.DB) {
		for _, opt := range opts {
			if opt != 0 {
				db.SetConnMaxLifetime(opt)
				break
			}
		}
	}
}
