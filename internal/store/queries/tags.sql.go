package queries

import (
	"context"
	"database/sql"
)

// Tag mirrors a row in the tags table.
type Tag struct {
	ID          int64
	Name        string
	ParentID    sql.NullInt64
	CanonicalID sql.NullInt64
	CreatedAt   sql.NullTime
}

const insertTag = `INSERT INTO tags (name, parent_id) VALUES (?, ?)`

// InsertTag creates a new tag node and returns its id.
func (q *Queries) InsertTag(ctx context.Context, name string, parentID sql.NullInt64) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertTag, name, parentID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const findTagByNameAndParent = `
SELECT id, name, parent_id, canonical_id, created_at
FROM tags WHERE name = ? AND COALESCE(parent_id, 0) = COALESCE(?, 0)
`

// FindTagByNameAndParent looks up the tag node matching (name, parentID).
func (q *Queries) FindTagByNameAndParent(ctx context.Context, name string, parentID sql.NullInt64) (Tag, error) {
	row := q.db.QueryRowContext(ctx, findTagByNameAndParent, name, parentID)
	return scanTag(row)
}

const findTagByID = `
SELECT id, name, parent_id, canonical_id, created_at FROM tags WHERE id = ?
`

// FindTagByID looks up a tag node by id.
func (q *Queries) FindTagByID(ctx context.Context, id int64) (Tag, error) {
	row := q.db.QueryRowContext(ctx, findTagByID, id)
	return scanTag(row)
}

const listAllTags = `
SELECT id, name, parent_id, canonical_id, created_at FROM tags
`

// ListAllTags returns every tag node, used to build the in-memory forest the
// mirror rebuild walks for ancestor-prefixed path materialization.
func (q *Queries) ListAllTags(ctx context.Context) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, listAllTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTag(row scannable) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Name, &t.ParentID, &t.CanonicalID, &t.CreatedAt)
	return t, err
}
