package queries

import (
	"context"
	"database/sql"
)

// Collection mirrors a row in the collections table.
type Collection struct {
	ID        int64
	Name      string
	CreatedAt sql.NullTime
}

const insertCollection = `INSERT INTO collections (name) VALUES (?)`

// InsertCollection creates a new named collection and returns its id.
func (q *Queries) InsertCollection(ctx context.Context, name string) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertCollection, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const findCollectionByName = `SELECT id, name, created_at FROM collections WHERE name = ?`

// FindCollectionByName looks up a collection by its unique name.
func (q *Queries) FindCollectionByName(ctx context.Context, name string) (Collection, error) {
	var c Collection
	err := q.db.QueryRowContext(ctx, findCollectionByName, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}

const insertCollectionFile = `INSERT OR IGNORE INTO collection_files (collection_id, file_id) VALUES (?, ?)`

// InsertCollectionFile adds fileID to a collection. Idempotent.
func (q *Queries) InsertCollectionFile(ctx context.Context, collectionID, fileID int64) error {
	_, err := q.db.ExecContext(ctx, insertCollectionFile, collectionID, fileID)
	return err
}

const listCollectionFiles = `
SELECT f.path FROM collection_files cf JOIN files f ON f.id = cf.file_id
WHERE cf.collection_id = ? ORDER BY f.path
`

// ListCollectionFiles returns the member paths of a collection.
func (q *Queries) ListCollectionFiles(ctx context.Context, collectionID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCollectionFiles, collectionID)
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

const listCollections = `SELECT id, name, created_at FROM collections ORDER BY name`

// ListCollections returns every collection.
func (q *Queries) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := q.db.QueryContext(ctx, listCollections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
