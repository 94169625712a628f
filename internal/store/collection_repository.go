package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// CollectionRepository provides named bags of files.
type CollectionRepository struct {
	q *queries.Queries
}

// NewCollectionRepository wraps q for Collection operations.
func NewCollectionRepository(q *queries.Queries) *CollectionRepository {
	return &CollectionRepository{q: q}
}

// Create makes a new, empty named collection.
func (r *CollectionRepository) Create(ctx context.Context, name string) (int64, error) {
	id, err := r.q.InsertCollection(ctx, name)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: collection %q already exists", ErrConflict, name)
		}
		return 0, err
	}
	return id, nil
}

// FindByName looks up a collection by its unique name.
func (r *CollectionRepository) FindByName(ctx context.Context, name string) (*CollectionRecord, error) {
	row, err := r.q.FindCollectionByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec := collectionRecordFromRow(row)
	return &rec, nil
}

// AddFile adds fileID as a member of collectionID.
func (r *CollectionRepository) AddFile(ctx context.Context, collectionID, fileID int64) error {
	return r.q.InsertCollectionFile(ctx, collectionID, fileID)
}

// ListFiles returns the member paths of a collection.
func (r *CollectionRepository) ListFiles(ctx context.Context, collectionID int64) ([]string, error) {
	return r.q.ListCollectionFiles(ctx, collectionID)
}

// List returns every collection.
func (r *CollectionRepository) List(ctx context.Context) ([]CollectionRecord, error) {
	rows, err := r.q.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, collectionRecordFromRow(row))
	}
	return out, nil
}
