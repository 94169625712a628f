package queries

import "context"

const deleteFtsRow = `DELETE FROM files_fts WHERE rowid = ?`

// DeleteFtsRow removes the mirror row for fileID. FTS5 tables have no
// UPDATE-in-place for our purposes, so mirror maintenance always pairs this
// with InsertFtsRow inside the same transaction as the logical write.
func (q *Queries) DeleteFtsRow(ctx context.Context, fileID int64) error {
	_, err := q.db.ExecContext(ctx, deleteFtsRow, fileID)
	return err
}

const insertFtsRow = `
INSERT INTO files_fts (rowid, path, tags_text, attrs_text) VALUES (?, ?, ?, ?)
`

// InsertFtsRow materializes the mirror row for fileID.
func (q *Queries) InsertFtsRow(ctx context.Context, fileID int64, path, tagsText, attrsText string) error {
	_, err := q.db.ExecContext(ctx, insertFtsRow, fileID, path, tagsText, attrsText)
	return err
}

const updateFtsRowPath = `UPDATE files_fts SET path = ? WHERE rowid = ?`

// UpdateFtsRowPath updates only the mirror's path column, used when a
// rename touches many files at once and a full delete+reinsert would lose
// the tags_text/attrs_text already materialized.
func (q *Queries) UpdateFtsRowPath(ctx context.Context, fileID int64, path string) error {
	_, err := q.db.ExecContext(ctx, updateFtsRowPath, path, fileID)
	return err
}

const searchFts = `
SELECT f.path FROM files_fts ft
JOIN files f ON f.id = ft.rowid
WHERE files_fts MATCH ?
ORDER BY f.id
`

// SearchFts runs a compiled FTS5 MATCH expression and returns matching
// paths in insertion (file id) order, the default result-order policy.
func (q *Queries) SearchFts(ctx context.Context, matchExpr string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, searchFts, matchExpr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const ftsRowExistsForFile = `SELECT EXISTS(SELECT 1 FROM files_fts WHERE rowid = ?)`

// FtsRowExistsForFile reports whether a mirror row exists for fileID. Only
// the store's tests call it.
func (q *Queries) FtsRowExistsForFile(ctx context.Context, fileID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, ftsRowExistsForFile, fileID).Scan(&exists)
	return exists, err
}
