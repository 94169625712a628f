// Package store implements marlin's embedded relational store: schema
// migrations, the FTS mirror, and one repository per metadata domain
// (files, tags, attributes, links, collections, saved views, dirty marks).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/marlin-md/marlin/db/migrations"
	"github.com/marlin-md/marlin/internal/config"
	"github.com/marlin-md/marlin/internal/store/queries"

	// Import the pure-Go SQLite driver for database/sql.
	_ "modernc.org/sqlite"
)

// Context holds the live database connection and the query layer built
// over it. It is the single shared mutable resource described in §5 of the
// index specification; every writer funnels through ctx.DB.
type Context struct {
	DB      *sql.DB
	Queries *queries.Queries
	path    string
}

// Open creates or migrates the index database at dbPath. An empty dbPath
// resolves to config.GetDBPath(). Before any migration runs, callers that
// want the §4.1 "safety copy" guarantee should invoke the snapshot engine
// themselves — Open does not take a backup, to keep the store package free
// of a dependency on the snapshot package.
func Open(dbPath string) (*Context, error) {
	path := dbPath
	if path == "" {
		path = config.GetDBPath()
	}

	useMemory := path == ":memory:"
	if !useMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	dsn, err := buildDSN(path, useMemory)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	return &Context{
		DB:      db,
		Queries: queries.New(db),
		path:    path,
	}, nil
}

func buildDSN(path string, useMemory bool) (string, error) {
	if useMemory {
		return "file::memory:?cache=shared&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)", nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve store path: %w", err)
	}
	return fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		filepath.ToSlash(absPath),
	), nil
}

// Path returns the on-disk location of the live store, or "" for an
// in-memory store.
func (c *Context) Path() string {
	if c == nil || c.path == ":memory:" {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func Close(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.DB.Close()
}

// WithTx runs fn inside a single write transaction, committing on success
// and rolling back on any error fn returns. Every mutating operation in
// ops, scanner, and watcher goes through this helper, so there is exactly
// one code path that opens a write transaction, as §5 requires.
func (c *Context) WithTx(ctx context.Context, fn func(*sql.Tx, *queries.Queries) error) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("store: missing database context")
	}

	tx, err := c.beginWithRetry(ctx)
	if err != nil {
		return err
	}

	q := queries.New(tx)
	if err := fn(tx, q); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// beginWithRetry opens a write transaction, retrying with bounded backoff
// when the store reports SQLITE_BUSY, per §4.1's error model.
func (c *Context) beginWithRetry(ctx context.Context) (*sql.Tx, error) {
	const maxAttempts = 5
	backoff := 20 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := c.DB.BeginTx(ctx, nil)
		if err == nil {
			return tx, nil
		}
		lastErr = err
		if !isBusyError(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("%w: %v", ErrStoreBusy, lastErr)
}

func isBusyError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked"))
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
