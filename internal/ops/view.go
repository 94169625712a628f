package ops

import (
	"context"
	"database/sql"

	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// ViewOps implements `view save`/`view list` (§4.3). `view exec` lives in
// the query engine, which re-parses the saved DSL text and executes it.
type ViewOps struct {
	db *store.Context
}

// NewViewOps constructs ViewOps over an open store.
func NewViewOps(db *store.Context) *ViewOps {
	return &ViewOps{db: db}
}

// Save stores query verbatim under name.
func (o *ViewOps) Save(ctx context.Context, name, query string) error {
	return o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		_, err := store.NewViewRepository(q).Save(ctx, name, query)
		return err
	})
}

// Find looks up a saved view's DSL text by name.
func (o *ViewOps) Find(ctx context.Context, name string) (*store.SavedViewRecord, error) {
	var out *store.SavedViewRecord
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		var err error
		out, err = store.NewViewRepository(q).FindByName(ctx, name)
		return err
	})
	return out, err
}

// List returns every saved view.
func (o *ViewOps) List(ctx context.Context) ([]store.SavedViewRecord, error) {
	var out []store.SavedViewRecord
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		var err error
		out, err = store.NewViewRepository(q).List(ctx)
		return err
	})
	return out, err
}
