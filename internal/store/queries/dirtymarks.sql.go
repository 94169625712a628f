package queries

import "context"

const upsertDirtyMark = `
INSERT INTO file_dirty_marks (file_id, marked_at) VALUES (?, ?)
ON CONFLICT(file_id) DO UPDATE SET marked_at = excluded.marked_at
`

// UpsertDirtyMark marks fileID dirty as of markedAt (unix seconds), written
// only by the watcher.
func (q *Queries) UpsertDirtyMark(ctx context.Context, fileID, markedAt int64) error {
	_, err := q.db.ExecContext(ctx, upsertDirtyMark, fileID, markedAt)
	return err
}

// DirtyMark mirrors a row in the file_dirty_marks table, joined with the
// file's current path for the scanner's re-stat pass.
type DirtyMark struct {
	FileID   int64
	Path     string
	MarkedAt int64
}

const listDirtyMarks = `
SELECT m.file_id, f.path, m.marked_at
FROM file_dirty_marks m JOIN files f ON f.id = m.file_id
ORDER BY m.marked_at
`

// ListDirtyMarks returns every dirty mark joined with its file's path.
func (q *Queries) ListDirtyMarks(ctx context.Context) ([]DirtyMark, error) {
	rows, err := q.db.QueryContext(ctx, listDirtyMarks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DirtyMark
	for rows.Next() {
		var m DirtyMark
		if err := rows.Scan(&m.FileID, &m.Path, &m.MarkedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const clearDirtyMark = `DELETE FROM file_dirty_marks WHERE file_id = ?`

// ClearDirtyMark removes the dirty mark for fileID, consumed only by
// `scan --dirty` once the file has been successfully re-stat'd.
func (q *Queries) ClearDirtyMark(ctx context.Context, fileID int64) error {
	_, err := q.db.ExecContext(ctx, clearDirtyMark, fileID)
	return err
}

const countDirtyMarks = `SELECT COUNT(*) FROM file_dirty_marks`

// CountDirtyMarks reports how many files are currently marked dirty.
func (q *Queries) CountDirtyMarks(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDirtyMarks).Scan(&n)
	return n, err
}
