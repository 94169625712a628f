package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// openTestStore opens a fresh on-disk database under a per-test temp
// directory. A shared-cache ":memory:" database would be visible across
// every *sql.DB opened with the same DSN within this test binary, so tests
// use real temp files the way the teacher's own connection_test.go does.
func openTestStore(t *testing.T) *Context {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ctx, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close(ctx) })
	return ctx
}

func TestOpenRunsMigrations(t *testing.T) {
	ctx := openTestStore(t)

	var version int
	if err := ctx.DB.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version); err != nil {
		t.Fatalf("querying schema_version: %v", err)
	}
	if version < 1 {
		t.Fatalf("expected schema_version >= 1, got %d", version)
	}
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	ctx := openTestStore(t)

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		_, insertErr := q.InsertFile(context.Background(), queries.InsertFileParams{Path: "/a"})
		return insertErr
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	repo := NewFileRepository(ctx.Queries)
	if _, err := repo.FindByPath(context.Background(), "/a"); err != nil {
		t.Fatalf("expected committed file to be findable: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := openTestStore(t)

	wantErr := errors.New("boom")
	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		if _, err := q.InsertFile(context.Background(), queries.InsertFileParams{Path: "/b"}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped boom error, got %v", err)
	}

	repo := NewFileRepository(ctx.Queries)
	if _, err := repo.FindByPath(context.Background(), "/b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected rolled-back insert to be absent, got %v", err)
	}
}
