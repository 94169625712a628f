package queries

import (
	"context"
	"database/sql"
)

// SavedView mirrors a row in the saved_views table.
type SavedView struct {
	ID        int64
	Name      string
	Query     string
	CreatedAt sql.NullTime
}

const insertSavedView = `INSERT INTO saved_views (name, query) VALUES (?, ?)`

// InsertSavedView stores a named query verbatim.
func (q *Queries) InsertSavedView(ctx context.Context, name, query string) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertSavedView, name, query)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const findSavedViewByName = `SELECT id, name, query, created_at FROM saved_views WHERE name = ?`

// FindSavedViewByName looks up a saved view by its unique name.
func (q *Queries) FindSavedViewByName(ctx context.Context, name string) (SavedView, error) {
	var v SavedView
	err := q.db.QueryRowContext(ctx, findSavedViewByName, name).Scan(&v.ID, &v.Name, &v.Query, &v.CreatedAt)
	return v, err
}

const listSavedViews = `SELECT id, name, query, created_at FROM saved_views ORDER BY name`

// ListSavedViews returns every saved view.
func (q *Queries) ListSavedViews(ctx context.Context) ([]SavedView, error) {
	rows, err := q.db.QueryContext(ctx, listSavedViews)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedView
	for rows.Next() {
		var v SavedView
		if err := rows.Scan(&v.ID, &v.Name, &v.Query, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
