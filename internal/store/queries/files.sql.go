package queries

import (
	"context"
	"database/sql"
)

// File mirrors a row in the files table.
type File struct {
	ID        int64
	Path      string
	Size      sql.NullInt64
	Mtime     sql.NullInt64
	Hash      sql.NullString
	Inode     sql.NullInt64
	Device    sql.NullInt64
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

const insertFile = `
INSERT INTO files (path, size, mtime, inode, device, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
`

// InsertFileParams carries the arguments for InsertFile.
type InsertFileParams struct {
	Path   string
	Size   sql.NullInt64
	Mtime  sql.NullInt64
	Inode  sql.NullInt64
	Device sql.NullInt64
}

// InsertFile creates a new files row and returns its id.
func (q *Queries) InsertFile(ctx context.Context, arg InsertFileParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertFile, arg.Path, arg.Size, arg.Mtime, arg.Inode, arg.Device)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateFileStat = `
UPDATE files SET size = ?, mtime = ?, inode = ?, device = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// UpdateFileStatParams carries the arguments for UpdateFileStat.
type UpdateFileStatParams struct {
	Size   sql.NullInt64
	Mtime  sql.NullInt64
	Inode  sql.NullInt64
	Device sql.NullInt64
	ID     int64
}

// UpdateFileStat refreshes size/mtime/inode/device for an existing file.
func (q *Queries) UpdateFileStat(ctx context.Context, arg UpdateFileStatParams) error {
	_, err := q.db.ExecContext(ctx, updateFileStat, arg.Size, arg.Mtime, arg.Inode, arg.Device, arg.ID)
	return err
}

const updateFilePath = `UPDATE files SET path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

// UpdateFilePath renames a single file row (the exact-path rename case).
func (q *Queries) UpdateFilePath(ctx context.Context, id int64, newPath string) error {
	_, err := q.db.ExecContext(ctx, updateFilePath, newPath, id)
	return err
}

const renamePathPrefix = `
UPDATE files SET path = ? || substr(path, ?), updated_at = CURRENT_TIMESTAMP
WHERE path = ? OR path LIKE ? || '/%'
`

// RenamePathPrefix rewrites every file path under oldPrefix to start with
// newPrefix instead, for directory renames (§4.5).
func (q *Queries) RenamePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	res, err := q.db.ExecContext(ctx, renamePathPrefix, newPrefix, len(oldPrefix)+1, oldPrefix, oldPrefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const findFileByPath = `
SELECT id, path, size, mtime, hash, inode, device, created_at, updated_at
FROM files WHERE path = ?
`

// FindFileByPath looks up a file by its exact canonical path.
func (q *Queries) FindFileByPath(ctx context.Context, path string) (File, error) {
	row := q.db.QueryRowContext(ctx, findFileByPath, path)
	return scanFile(row)
}

const findFileByID = `
SELECT id, path, size, mtime, hash, inode, device, created_at, updated_at
FROM files WHERE id = ?
`

// FindFileByID looks up a file by its id.
func (q *Queries) FindFileByID(ctx context.Context, id int64) (File, error) {
	row := q.db.QueryRowContext(ctx, findFileByID, id)
	return scanFile(row)
}

const deleteFileByID = `DELETE FROM files WHERE id = ?`

// DeleteFileByID removes a file row; cascades to tags, attributes, links,
// collection memberships, and dirty marks via foreign keys.
func (q *Queries) DeleteFileByID(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFileByID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listAllFiles = `
SELECT id, path, size, mtime, hash, inode, device, created_at, updated_at
FROM files ORDER BY id
`

// ListAllFiles returns every indexed file, used by the one-shot mirror
// rebuild after a tag-path algorithm migration.
func (q *Queries) ListAllFiles(ctx context.Context) ([]File, error) {
	rows, err := q.db.QueryContext(ctx, listAllFiles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		f, err := scanFileRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const countFiles = `SELECT COUNT(*) FROM files`

// CountFiles returns the total number of indexed files.
func (q *Queries) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countFiles).Scan(&n)
	return n, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFile(row scannable) (File, error) {
	var f File
	err := row.Scan(&f.ID, &f.Path, &f.Size, &f.Mtime, &f.Hash, &f.Inode, &f.Device, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func scanFileRows(rows *sql.Rows) (File, error) {
	return scanFile(rows)
}
