package queries

import "context"

// Attribute mirrors a row in the attributes table.
type Attribute struct {
	ID     int64
	FileID int64
	Key    string
	Value  string
}

const upsertAttribute = `
INSERT INTO attributes (file_id, key, value) VALUES (?, ?, ?)
ON CONFLICT(file_id, key) DO UPDATE SET value = excluded.value
`

// UpsertAttribute sets (fileID, key) -> value, inserting or overwriting.
func (q *Queries) UpsertAttribute(ctx context.Context, fileID int64, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertAttribute, fileID, key, value)
	return err
}

const listAttributesForFile = `
SELECT id, file_id, key, value FROM attributes WHERE file_id = ? ORDER BY key
`

// ListAttributesForFile returns every (key, value) pair for a file.
func (q *Queries) ListAttributesForFile(ctx context.Context, fileID int64) ([]Attribute, error) {
	rows, err := q.db.QueryContext(ctx, listAttributesForFile, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attribute
	for rows.Next() {
		var a Attribute
		if err := rows.Scan(&a.ID, &a.FileID, &a.Key, &a.Value); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const deleteAttribute = `DELETE FROM attributes WHERE file_id = ? AND key = ?`

// DeleteAttribute removes a single key from a file and reports whether a
// row was removed.
func (q *Queries) DeleteAttribute(ctx context.Context, fileID int64, key string) (bool, error) {
	res, err := q.db.ExecContext(ctx, deleteAttribute, fileID, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
