package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// ViewRepository provides named, persisted query strings.
type ViewRepository struct {
	q *queries.Queries
}

// NewViewRepository wraps q for SavedView operations.
func NewViewRepository(q *queries.Queries) *ViewRepository {
	return &ViewRepository{q: q}
}

// Save stores the DSL text verbatim under name.
func (r *ViewRepository) Save(ctx context.Context, name, query string) (int64, error) {
	id, err := r.q.InsertSavedView(ctx, name, query)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: view %q already exists", ErrConflict, name)
		}
		return 0, err
	}
	return id, nil
}

// FindByName looks up a saved view by its unique name.
func (r *ViewRepository) FindByName(ctx context.Context, name string) (*SavedViewRecord, error) {
	row, err := r.q.FindSavedViewByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec := savedViewRecordFromRow(row)
	return &rec, nil
}

// List returns every saved view.
func (r *ViewRepository) List(ctx context.Context) ([]SavedViewRecord, error) {
	rows, err := r.q.ListSavedViews(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SavedViewRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, savedViewRecordFromRow(row))
	}
	return out, nil
}
