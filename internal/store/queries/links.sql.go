package queries

import (
	"context"
	"database/sql"
)

const insertLink = `INSERT INTO links (src_file_id, dst_file_id, type) VALUES (?, ?, ?)`

// InsertLink creates a typed edge between two files.
func (q *Queries) InsertLink(ctx context.Context, srcID, dstID int64, typ sql.NullString) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertLink, srcID, dstID, typ)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const deleteLink = `
DELETE FROM links WHERE src_file_id = ? AND dst_file_id = ? AND COALESCE(type, '') = COALESCE(?, '')
`

// DeleteLink removes the edge matching (src, dst, type) and reports whether
// a row was removed.
func (q *Queries) DeleteLink(ctx context.Context, srcID, dstID int64, typ sql.NullString) (bool, error) {
	res, err := q.db.ExecContext(ctx, deleteLink, srcID, dstID, typ)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const findLink = `
SELECT id FROM links WHERE src_file_id = ? AND dst_file_id = ? AND COALESCE(type, '') = COALESCE(?, '')
`

// FindLink returns the id of the edge matching (src, dst, type).
func (q *Queries) FindLink(ctx context.Context, srcID, dstID int64, typ sql.NullString) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, findLink, srcID, dstID, typ).Scan(&id)
	return id, err
}

const listLinksOut = `
SELECT f.path, l.type FROM links l JOIN files f ON f.id = l.dst_file_id
WHERE l.src_file_id = ? ORDER BY f.path
`

// ListLinksOut returns the outgoing neighbors of fileID.
func (q *Queries) ListLinksOut(ctx context.Context, fileID int64) ([]LinkNeighborRow, error) {
	return q.listLinkNeighbors(ctx, listLinksOut, fileID)
}

const listLinksIn = `
SELECT f.path, l.type FROM links l JOIN files f ON f.id = l.src_file_id
WHERE l.dst_file_id = ? ORDER BY f.path
`

// ListLinksIn returns the incoming neighbors of fileID (backlinks).
func (q *Queries) ListLinksIn(ctx context.Context, fileID int64) ([]LinkNeighborRow, error) {
	return q.listLinkNeighbors(ctx, listLinksIn, fileID)
}

// LinkNeighborRow is a neighbor path joined with its edge type.
type LinkNeighborRow struct {
	Path string
	Type sql.NullString
}

func (q *Queries) listLinkNeighbors(ctx context.Context, query string, fileID int64) ([]LinkNeighborRow, error) {
	rows, err := q.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LinkNeighborRow
	for rows.Next() {
		var r LinkNeighborRow
		if err := rows.Scan(&r.Path, &r.Type); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
