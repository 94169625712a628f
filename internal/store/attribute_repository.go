package store

import (
	"context"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// AttributeRepository provides per-file key/value attribute operations.
type AttributeRepository struct {
	q *queries.Queries
}

// NewAttributeRepository wraps q for Attribute operations.
func NewAttributeRepository(q *queries.Queries) *AttributeRepository {
	return &AttributeRepository{q: q}
}

// Set upserts (fileID, key) -> value and rebuilds the file's mirror row.
// Empty values are preserved verbatim, not coerced to NULL (§9 Open
// Question, resolved in DESIGN.md).
func (r *AttributeRepository) Set(ctx context.Context, fileID int64, key, value string) error {
	if err := r.q.UpsertAttribute(ctx, fileID, key, value); err != nil {
		return err
	}
	return RebuildFileMirror(ctx, r.q, fileID)
}

// List returns every (key, value) pair for a file.
func (r *AttributeRepository) List(ctx context.Context, fileID int64) ([]AttributeRecord, error) {
	rows, err := r.q.ListAttributesForFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	out := make([]AttributeRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, attributeRecordFromRow(row))
	}
	return out, nil
}

// Delete removes a single key from a file and rebuilds the mirror row if
// anything changed.
func (r *AttributeRepository) Delete(ctx context.Context, fileID int64, key string) (bool, error) {
	removed, err := r.q.DeleteAttribute(ctx, fileID, key)
	if err != nil {
		return false, err
	}
	if removed {
		if err := RebuildFileMirror(ctx, r.q, fileID); err != nil {
			return false, err
		}
	}
	return removed, nil
}
