package store

import "time"

// FileRecord represents a row in the files table: the identity of an
// indexed filesystem object.
type FileRecord struct {
	ID        int64
	Path      string
	Size      *int64
	Mtime     *int64
	Hash      *string
	Inode     *int64
	Device    *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TagRecord represents a row in the tags table: one node of the tag forest.
type TagRecord struct {
	ID          int64
	Name        string
	ParentID    *int64
	CanonicalID *int64
	CreatedAt   time.Time
}

// AttributeRecord represents a row in the attributes table.
type AttributeRecord struct {
	ID     int64
	FileID int64
	Key    string
	Value  string
}

// LinkRecord represents a typed directed edge between two files.
type LinkRecord struct {
	ID        int64
	SrcFileID int64
	DstFileID int64
	Type      *string
}

// CollectionRecord represents a named bag of files.
type CollectionRecord struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// SavedViewRecord represents a named, persisted query.
type SavedViewRecord struct {
	ID        int64
	Name      string
	Query     string
	CreatedAt time.Time
}

// DirtyMarkRecord represents a sentinel row declaring that a file's
// on-disk state may have changed since the last index.
type DirtyMarkRecord struct {
	FileID   int64
	MarkedAt int64
}

// LinkNeighbor is a Link joined with the neighbor file's path, returned by
// `link list` / `link backlinks`.
type LinkNeighbor struct {
	Path string
	Type *string
}
