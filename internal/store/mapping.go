package store

import "github.com/marlin-md/marlin/internal/store/queries"

func fileRecordFromRow(row queries.File) FileRecord {
	return FileRecord{
		ID:        row.ID,
		Path:      row.Path,
		Size:      optionalInt64(row.Size),
		Mtime:     optionalInt64(row.Mtime),
		Hash:      optionalString(row.Hash),
		Inode:     optionalInt64(row.Inode),
		Device:    optionalInt64(row.Device),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func tagRecordFromRow(row queries.Tag) TagRecord {
	var parentID, canonicalID *int64
	if row.ParentID.Valid {
		v := row.ParentID.Int64
		parentID = &v
	}
	if row.CanonicalID.Valid {
		v := row.CanonicalID.Int64
		canonicalID = &v
	}
	return TagRecord{
		ID:          row.ID,
		Name:        row.Name,
		ParentID:    parentID,
		CanonicalID: canonicalID,
		CreatedAt:   row.CreatedAt.Time,
	}
}

func attributeRecordFromRow(row queries.Attribute) AttributeRecord {
	return AttributeRecord{ID: row.ID, FileID: row.FileID, Key: row.Key, Value: row.Value}
}

func collectionRecordFromRow(row queries.Collection) CollectionRecord {
	return CollectionRecord{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt.Time}
}

func savedViewRecordFromRow(row queries.SavedView) SavedViewRecord {
	return SavedViewRecord{ID: row.ID, Name: row.Name, Query: row.Query, CreatedAt: row.CreatedAt.Time}
}

func linkNeighborFromRow(row queries.LinkNeighborRow) LinkNeighbor {
	return LinkNeighbor{Path: row.Path, Type: optionalString(row.Type)}
}
