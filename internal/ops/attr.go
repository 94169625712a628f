package ops

import (
	"context"
	"database/sql"

	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// AttrOps implements `attr set`/`attr ls`/`attr rm` (§4.3).
type AttrOps struct {
	db *store.Context
}

// NewAttrOps constructs AttrOps over an open store.
func NewAttrOps(db *store.Context) *AttrOps {
	return &AttrOps{db: db}
}

// Set upserts (key, value) on every file matching pattern.
func (o *AttrOps) Set(ctx context.Context, pattern, key, value string) (*BulkResult, error) {
	result := newBulkResult()
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		files, err := resolvePattern(ctx, q, pattern)
		if err != nil {
			return err
		}
		attrRepo := store.NewAttributeRepository(q)
		for _, f := range files {
			if err := attrRepo.Set(ctx, f.ID, key, value); err != nil {
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

// List returns every (key, value) pair for a single file, addressed by its
// literal path (not a glob — §4.3's `attr ls <path>`).
func (o *AttrOps) List(ctx context.Context, path string) ([]store.AttributeRecord, error) {
	var out []store.AttributeRecord
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		file, err := store.NewFileRepository(q).FindByPath(ctx, path)
		if err != nil {
			return err
		}
		out, err = store.NewAttributeRepository(q).List(ctx, file.ID)
		return err
	})
	return out, err
}

// Remove deletes key from every file matching pattern.
func (o *AttrOps) Remove(ctx context.Context, pattern, key string) (*BulkResult, error) {
	result := newBulkResult()
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		files, err := resolvePattern(ctx, q, pattern)
		if err != nil {
			return err
		}
		attrRepo := store.NewAttributeRepository(q)
		for _, f := range files {
			if _, err := attrRepo.Delete(ctx, f.ID, key); err != nil {
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
