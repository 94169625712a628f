// Package ops implements the per-call-transaction facades over
// internal/store that the command layer drives for tag, attribute, link,
// collection, and saved-view operations (§4.3). Each exported method opens
// exactly one transaction; glob-to-path resolution happens here, never in
// the store layer, which sees only literal paths (§9 Design Notes).
package ops

import (
	"context"
	"fmt"

	"github.com/marlin-md/marlin/internal/glob"
	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// BulkResult tallies the outcome of an operation applied across every path
// a glob resolved to, per §8's "per-item failures are logged and counted
// but do not abort the whole operation" propagation policy.
type BulkResult struct {
	Succeeded []string
	Failed    map[string]error
}

func newBulkResult() *BulkResult {
	return &BulkResult{Failed: make(map[string]error)}
}

func (r *BulkResult) ok(path string) {
	r.Succeeded = append(r.Succeeded, path)
}

func (r *BulkResult) fail(path string, err error) {
	r.Failed[path] = err
}

// Err reports a non-nil error when every item failed, satisfying §8's "exit
// is nonzero only if zero items succeeded" rule; callers print the full
// BulkResult regardless.
func (r *BulkResult) Err() error {
	if len(r.Succeeded) == 0 && len(r.Failed) > 0 {
		return fmt.Errorf("%w: no matching files succeeded", store.ErrInvalidArgument)
	}
	return nil
}

// resolvePattern compiles pattern and returns every currently indexed
// file whose path matches it.
func resolvePattern(ctx context.Context, q *queries.Queries, pattern string) ([]store.FileRecord, error) {
	p, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}

	all, err := store.NewFileRepository(q).ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]store.FileRecord, 0, len(all))
	for _, f := range all {
		if p.Match(f.Path) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", store.ErrNotFound, pattern)
	}
	return matched, nil
}
