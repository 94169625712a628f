package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// LinkDirection selects which endpoint `link list` walks from.
type LinkDirection int

// Link directions, matching §4.3's --direction flag.
const (
	DirectionOut LinkDirection = iota
	DirectionIn
	DirectionBoth
)

// LinkRepository provides typed directed edges between files. Self-links
// are permitted and (src,dst,type) is distinct from (dst,src,type) — both
// may coexist (§9 Open Question, resolved in DESIGN.md).
type LinkRepository struct {
	q *queries.Queries
}

// NewLinkRepository wraps q for Link operations.
func NewLinkRepository(q *queries.Queries) *LinkRepository {
	return &LinkRepository{q: q}
}

// Add creates the edge (srcID, dstID, type), enforcing the uniqueness on
// (src, dst, type).
func (r *LinkRepository) Add(ctx context.Context, srcID, dstID int64, typ *string) error {
	_, err := r.q.InsertLink(ctx, srcID, dstID, nullString(typ))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: link already exists", ErrConflict)
		}
		return err
	}
	return nil
}

// Remove deletes the edge matching (srcID, dstID, type) and reports
// whether a row was removed.
func (r *LinkRepository) Remove(ctx context.Context, srcID, dstID int64, typ *string) (bool, error) {
	return r.q.DeleteLink(ctx, srcID, dstID, nullString(typ))
}

// List returns the neighbors of fileID in the requested direction.
func (r *LinkRepository) List(ctx context.Context, fileID int64, direction LinkDirection) ([]LinkNeighbor, error) {
	switch direction {
	case DirectionOut:
		rows, err := r.q.ListLinksOut(ctx, fileID)
		return neighborsFromRows(rows), err
	case DirectionIn:
		rows, err := r.q.ListLinksIn(ctx, fileID)
		return neighborsFromRows(rows), err
	default:
		out, err := r.q.ListLinksOut(ctx, fileID)
		if err != nil {
			return nil, err
		}
		in, err := r.q.ListLinksIn(ctx, fileID)
		if err != nil {
			return nil, err
		}
		return append(neighborsFromRows(out), neighborsFromRows(in)...), nil
	}
}

// Backlinks is shorthand for List(ctx, fileID, DirectionIn).
func (r *LinkRepository) Backlinks(ctx context.Context, fileID int64) ([]LinkNeighbor, error) {
	return r.List(ctx, fileID, DirectionIn)
}

func neighborsFromRows(rows []queries.LinkNeighborRow) []LinkNeighbor {
	out := make([]LinkNeighbor, 0, len(rows))
	for _, row := range rows {
		out = append(out, linkNeighborFromRow(row))
	}
	return out
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "unique")
}
