package store

import (
	"context"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// DirtyMarkRepository provides the watcher-writes/scanner-clears dirty-mark
// table that couples the live watcher to `scan --dirty` (§4.1, §4.5).
type DirtyMarkRepository struct {
	q *queries.Queries
}

// NewDirtyMarkRepository wraps q for FileDirtyMark operations.
func NewDirtyMarkRepository(q *queries.Queries) *DirtyMarkRepository {
	return &DirtyMarkRepository{q: q}
}

// Mark records that fileID's on-disk state may have changed. Written only
// by the watcher.
func (r *DirtyMarkRepository) Mark(ctx context.Context, fileID, markedAtUnix int64) error {
	return r.q.UpsertDirtyMark(ctx, fileID, markedAtUnix)
}

// List returns every dirty mark joined with its file's current path.
func (r *DirtyMarkRepository) List(ctx context.Context) ([]queries.DirtyMark, error) {
	return r.q.ListDirtyMarks(ctx)
}

// Clear removes the dirty mark for fileID. Called only by the scanner,
// after a successful re-stat.
func (r *DirtyMarkRepository) Clear(ctx context.Context, fileID int64) error {
	return r.q.ClearDirtyMark(ctx, fileID)
}

// Count reports how many files are currently marked dirty.
func (r *DirtyMarkRepository) Count(ctx context.Context) (int64, error) {
	return r.q.CountDirtyMarks(ctx)
}
