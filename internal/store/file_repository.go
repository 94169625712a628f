package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// FileRepository provides the File entity's CRUD and mirror-coherent
// mutation operations. It is constructed fresh over whichever *queries.Queries
// the caller is using — the plain connection for reads, or a
// transaction-scoped one inside Context.WithTx for writes.
type FileRepository struct {
	q *queries.Queries
}

// NewFileRepository wraps q for File operations.
func NewFileRepository(q *queries.Queries) *FileRepository {
	return &FileRepository{q: q}
}

// FindByPath looks up a file by its canonical path.
func (r *FileRepository) FindByPath(ctx context.Context, path string) (*FileRecord, error) {
	row, err := r.q.FindFileByPath(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec := fileRecordFromRow(row)
	return &rec, nil
}

// FindByID looks up a file by id.
func (r *FileRepository) FindByID(ctx context.Context, id int64) (*FileRecord, error) {
	row, err := r.q.FindFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec := fileRecordFromRow(row)
	return &rec, nil
}

// StatInput carries the identity fields the scanner/watcher observe from
// the filesystem for a single file.
type StatInput struct {
	Path   string
	Size   *int64
	Mtime  *int64
	Inode  *int64
	Device *int64
}

// UpsertResult reports what Upsert actually did, feeding the scanner's
// (indexed, updated, skipped) summary counters.
type UpsertResult struct {
	FileID  int64
	Created bool
	Changed bool
}

// Upsert implements the scanner's full-mode policy: insert a new row, skip
// an unchanged one, or update size/mtime for a changed one. The FTS mirror
// is created or path-updated as part of the same call, inside the caller's
// transaction.
func (r *FileRepository) Upsert(ctx context.Context, in StatInput) (UpsertResult, error) {
	existing, err := r.q.FindFileByPath(ctx, in.Path)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id, err := r.q.InsertFile(ctx, queries.InsertFileParams{
			Path:   in.Path,
			Size:   nullInt64(in.Size),
			Mtime:  nullInt64(in.Mtime),
			Inode:  nullInt64(in.Inode),
			Device: nullInt64(in.Device),
		})
		if err != nil {
			return UpsertResult{}, err
		}
		if err := RebuildFileMirror(ctx, r.q, id); err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{FileID: id, Created: true, Changed: true}, nil
	case err != nil:
		return UpsertResult{}, err
	}

	if statEqual(existing, in) {
		return UpsertResult{FileID: existing.ID, Created: false, Changed: false}, nil
	}

	if err := r.q.UpdateFileStat(ctx, queries.UpdateFileStatParams{
		Size:   nullInt64(in.Size),
		Mtime:  nullInt64(in.Mtime),
		Inode:  nullInt64(in.Inode),
		Device: nullInt64(in.Device),
		ID:     existing.ID,
	}); err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{FileID: existing.ID, Created: false, Changed: true}, nil
}

func statEqual(existing queries.File, in StatInput) bool {
	sameInt := func(ni sql.NullInt64, v *int64) bool {
		if v == nil {
			return !ni.Valid
		}
		return ni.Valid && ni.Int64 == *v
	}
	return sameInt(existing.Size, in.Size) && sameInt(existing.Mtime, in.Mtime)
}

// RenamePath updates a single file's path (the exact-file rename case) and
// keeps the FTS mirror's path column consistent.
func (r *FileRepository) RenamePath(ctx context.Context, fileID int64, newPath string) error {
	if err := r.q.UpdateFilePath(ctx, fileID, newPath); err != nil {
		return err
	}
	return r.q.UpdateFtsRowPath(ctx, fileID, newPath)
}

// RenamePrefix rewrites every path under oldPrefix to start with newPrefix
// (the directory-rename case) and keeps every affected mirror row's path
// column consistent.
func (r *FileRepository) RenamePrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	affectedBefore, err := r.pathsUnderPrefix(ctx, oldPrefix)
	if err != nil {
		return 0, err
	}

	n, err := r.q.RenamePathPrefix(ctx, oldPrefix, newPrefix)
	if err != nil {
		return 0, err
	}

	for _, old := range affectedBefore {
		newPath := newPrefix + old[len(oldPrefix):]
		file, err := r.q.FindFileByPath(ctx, newPath)
		if err != nil {
			return 0, fmt.Errorf("locating renamed file %q: %w", newPath, err)
		}
		if err := r.q.UpdateFtsRowPath(ctx, file.ID, newPath); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (r *FileRepository) pathsUnderPrefix(ctx context.Context, prefix string) ([]string, error) {
	all, err := r.q.ListAllFiles(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range all {
		if f.Path == prefix || (len(f.Path) > len(prefix) && f.Path[:len(prefix)] == prefix && f.Path[len(prefix)] == '/') {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

// Delete removes a file row, cascading to tags, attributes, links,
// collection memberships, and dirty marks; the FTS mirror row is removed by
// the trg_files_ad trigger in the same transaction.
func (r *FileRepository) Delete(ctx context.Context, fileID int64) (bool, error) {
	n, err := r.q.DeleteFileByID(ctx, fileID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of indexed files.
func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	return r.q.CountFiles(ctx)
}

// ListAll returns every indexed file, used by ops to resolve a glob pattern
// against the current path set.
func (r *FileRepository) ListAll(ctx context.Context) ([]FileRecord, error) {
	rows, err := r.q.ListAllFiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]FileRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, fileRecordFromRow(row))
	}
	return out, nil
}
