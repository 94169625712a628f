package ops

import (
	"context"
	"database/sql"

	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// LinkOps implements `link add`/`link rm`/`link list`/`link backlinks`
// (§4.3). Links address a single src/dst pair by literal path, not a glob.
type LinkOps struct {
	db *store.Context
}

// NewLinkOps constructs LinkOps over an open store.
func NewLinkOps(db *store.Context) *LinkOps {
	return &LinkOps{db: db}
}

// Add creates the edge src -> dst, enforcing uniqueness on (src, dst, type).
func (o *LinkOps) Add(ctx context.Context, src, dst string, typ *string) error {
	return o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		srcFile, err := store.NewFileRepository(q).FindByPath(ctx, src)
		if err != nil {
			return err
		}
		dstFile, err := store.NewFileRepository(q).FindByPath(ctx, dst)
		if err != nil {
			return err
		}
		return store.NewLinkRepository(q).Add(ctx, srcFile.ID, dstFile.ID, typ)
	})
}

// Remove deletes the edge src -> dst matching type, reporting whether an
// edge was removed.
func (o *LinkOps) Remove(ctx context.Context, src, dst string, typ *string) (bool, error) {
	var removed bool
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		srcFile, err := store.NewFileRepository(q).FindByPath(ctx, src)
		if err != nil {
			return err
		}
		dstFile, err := store.NewFileRepository(q).FindByPath(ctx, dst)
		if err != nil {
			return err
		}
		removed, err = store.NewLinkRepository(q).Remove(ctx, srcFile.ID, dstFile.ID, typ)
		return err
	})
	return removed, err
}

// List returns path's neighbors in the requested direction.
func (o *LinkOps) List(ctx context.Context, path string, direction store.LinkDirection) ([]store.LinkNeighbor, error) {
	var out []store.LinkNeighbor
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		file, err := store.NewFileRepository(q).FindByPath(ctx, path)
		if err != nil {
			return err
		}
		out, err = store.NewLinkRepository(q).List(ctx, file.ID, direction)
		return err
	})
	return out, err
}

// Backlinks is shorthand for List(ctx, path, store.DirectionIn).
func (o *LinkOps) Backlinks(ctx context.Context, path string) ([]store.LinkNeighbor, error) {
	return o.List(ctx, path, store.DirectionIn)
}
