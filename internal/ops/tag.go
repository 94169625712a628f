package ops

import (
	"context"
	"database/sql"
	"errors"

	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// TagOps implements `tag add`/`tag rm` over a glob or explicit path,
// auto-creating missing tag-path segments (§4.3).
type TagOps struct {
	db *store.Context
}

// NewTagOps constructs TagOps over an open store.
func NewTagOps(db *store.Context) *TagOps {
	return &TagOps{db: db}
}

// Add ensures tagPath exists and applies its leaf tag to every file
// matching pattern. Idempotent: re-adding an already-applied tag to an
// unchanged file set changes nothing.
func (o *TagOps) Add(ctx context.Context, pattern, tagPath string) (*BulkResult, error) {
	result := newBulkResult()
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		files, err := resolvePattern(ctx, q, pattern)
		if err != nil {
			return err
		}

		tagRepo := store.NewTagRepository(q)
		tagID, err := tagRepo.EnsureTagPath(ctx, tagPath)
		if err != nil {
			return err
		}

		for _, f := range files {
			if err := tagRepo.ApplyTag(ctx, f.ID, tagID); err != nil {
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

// Remove detaches tagPath's leaf tag from every file matching pattern.
// Removing an absent tag from a file is a no-op for that file, not a
// failure.
func (o *TagOps) Remove(ctx context.Context, pattern, tagPath string) (*BulkResult, error) {
	result := newBulkResult()
	err := o.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		files, err := resolvePattern(ctx, q, pattern)
		if err != nil {
			return err
		}

		tagRepo := store.NewTagRepository(q)
		tagID, err := tagRepo.ResolveTagPath(ctx, tagPath)
		if errors.Is(err, store.ErrNotFound) {
			for _, f := range files {
				result.ok(f.Path)
			}
			return nil
		}
		if err != nil {
			return err
		}

		for _, f := range files {
			if _, err := tagRepo.RemoveTag(ctx, f.ID, tagID); err != nil {
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
