package queries

import "context"

const insertFileTag = `INSERT OR IGNORE INTO file_tags (file_id, tag_id) VALUES (?, ?)`

// InsertFileTag applies tagID to fileID. Idempotent.
func (q *Queries) InsertFileTag(ctx context.Context, fileID, tagID int64) error {
	_, err := q.db.ExecContext(ctx, insertFileTag, fileID, tagID)
	return err
}

const deleteFileTag = `DELETE FROM file_tags WHERE file_id = ? AND tag_id = ?`

// DeleteFileTag removes tagID from fileID and reports whether a row was
// removed.
func (q *Queries) DeleteFileTag(ctx context.Context, fileID, tagID int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, deleteFileTag, fileID, tagID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const listTagIDsForFile = `SELECT tag_id FROM file_tags WHERE file_id = ?`

// ListTagIDsForFile returns every tag id directly applied to fileID (leaf
// applications, not ancestor-expanded).
func (q *Queries) ListTagIDsForFile(ctx context.Context, fileID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listTagIDsForFile, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

const listAllFileTags = `SELECT file_id, tag_id FROM file_tags`

// FileTagPair is one row of the file_tags join table.
type FileTagPair struct {
	FileID int64
	TagID  int64
}

// ListAllFileTags returns every file_tags row. RebuildAllMirrors does not
// use it; it reads tags per file instead.
func (q *Queries) ListAllFileTags(ctx context.Context) ([]FileTagPair, error) {
	rows, err := q.db.QueryContext(ctx, listAllFileTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileTagPair
	for rows.Next() {
		var p FileTagPair
		if err := rows.Scan(&p.FileID, &p.TagID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
