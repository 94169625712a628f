package ops

import (
	"context"
	"database/sql"

	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// CollOps implements `coll create`/`coll add`/`coll list` (§4.3).
type CollOps struct {
	db *store.Context
}

// NewCollOps constructs CollOps over an open store.
func NewCollOps(db *store.Context) *CollOps {
	return &CollOps{db: db}
}

// Create makes a new, empty named collection.
func (o *CollOps) Create(ctx context.Context, name string) error {
	return o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		_, err := store.NewCollectionRepository(q).Create(ctx, name)
		return err
	})
}

// Add makes every file matching pattern a member of the named collection.
func (o *CollOps) Add(ctx context.Context, name, pattern string) (*BulkResult, error) {
	result := newBulkResult()
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		collRepo := store.NewCollectionRepository(q)
		coll, err := collRepo.FindByName(ctx, name)
		if err != nil {
			return err
		}
		files, err := resolvePattern(ctx, q, pattern)
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := collRepo.AddFile(ctx, coll.ID, f.ID); err != nil {
				result.fail(f.Path, err)
				continue
			}
			result.ok(f.Path)
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, result.Err()
}

// ListMembers returns the member paths of the named collection.
func (o *CollOps) ListMembers(ctx context.Context, name string) ([]string, error) {
	var out []string
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		collRepo := store.NewCollectionRepository(q)
		coll, err := collRepo.FindByName(ctx, name)
		if err != nil {
			return err
		}
		out, err = collRepo.ListFiles(ctx, coll.ID)
		return err
	})
	return out, err
}

// List returns every collection.
func (o *CollOps) List(ctx context.Context) ([]store.CollectionRecord, error) {
	var out []store.CollectionRecord
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		var err error
		out, err = store.NewCollectionRepository(q).List(ctx)
		return err
	})
	return out, err
}
