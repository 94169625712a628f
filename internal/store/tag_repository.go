package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// TagRepository provides Tag-forest operations: resolving and
// auto-creating a slash-joined tag path, and applying/removing leaf tags
// on files.
type TagRepository struct {
	q *queries.Queries
}

// NewTagRepository wraps q for Tag operations.
func NewTagRepository(q *queries.Queries) *TagRepository {
	return &TagRepository{q: q}
}

// EnsureTagPath resolves tagPath ("project/alpha/draft"), auto-creating any
// missing intermediate segments with the appropriate parent, and returns
// the id of the leaf tag. Each segment must be a non-empty, single path
// component — no internal "/".
func (r *TagRepository) EnsureTagPath(ctx context.Context, tagPath string) (int64, error) {
	segments := strings.Split(tagPath, "/")
	var parentID sql.NullInt64
	var leafID int64

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return 0, fmt.Errorf("%w: empty tag path segment in %q", ErrInvalidArgument, tagPath)
		}

		existing, err := r.q.FindTagByNameAndParent(ctx, seg, parentID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id, err := r.q.InsertTag(ctx, seg, parentID)
			if err != nil {
				return 0, err
			}
			leafID = id
		case err != nil:
			return 0, err
		default:
			leafID = existing.ID
		}

		parentID = sql.NullInt64{Int64: leafID, Valid: true}
	}

	return leafID, nil
}

// ResolveTagPath looks up tagPath without creating anything, returning
// ErrNotFound if any segment is missing. Used by `tag rm`, which should
// not fabricate tag nodes just to remove a tag no file has.
func (r *TagRepository) ResolveTagPath(ctx context.Context, tagPath string) (int64, error) {
	segments := strings.Split(tagPath, "/")
	var parentID sql.NullInt64
	var leafID int64

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return 0, fmt.Errorf("%w: empty tag path segment in %q", ErrInvalidArgument, tagPath)
		}

		existing, err := r.q.FindTagByNameAndParent(ctx, seg, parentID)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: tag %q", ErrNotFound, tagPath)
		}
		if err != nil {
			return 0, err
		}
		leafID = existing.ID
		parentID = sql.NullInt64{Int64: leafID, Valid: true}
	}

	return leafID, nil
}

// ApplyTag inserts FileTag(fileID, tagID) and rebuilds the file's mirror
// row. Idempotent: re-applying an already-applied tag is a no-op on
// membership.
func (r *TagRepository) ApplyTag(ctx context.Context, fileID, tagID int64) error {
	if err := r.q.InsertFileTag(ctx, fileID, tagID); err != nil {
		return err
	}
	return RebuildFileMirror(ctx, r.q, fileID)
}

// RemoveTag deletes FileTag(fileID, tagID) and rebuilds the file's mirror
// row, reporting whether membership changed.
func (r *TagRepository) RemoveTag(ctx context.Context, fileID, tagID int64) (bool, error) {
	removed, err := r.q.DeleteFileTag(ctx, fileID, tagID)
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
