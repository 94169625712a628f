package query

import (
	"context"

	"github.com/marlin-md/marlin/internal/store"
)

// Search parses and compiles src, then runs it against db's FTS mirror,
// returning matching paths in the store's default id-ordered result policy.
func Search(ctx context.Context, db *store.Context, src string) ([]string, error) {
	matchExpr, err := CompileString(src)
	if err != nil {
		return nil, err
	}
	return db.Queries.SearchFts(ctx, matchExpr)
}
