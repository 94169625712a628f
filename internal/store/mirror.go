package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/marlin-md/marlin/internal/store/queries"
)

// tagForest is an in-memory index over every tags row, used to walk a
// leaf tag up to its root and materialize every ancestor-prefixed path
// form, per §4.1's mirror-maintenance algorithm.
type tagForest struct {
	byID map[int64]queries.Tag
}

func loadTagForest(ctx context.Context, q *queries.Queries) (*tagForest, error) {
	all, err := q.ListAllTags(ctx)
	if err != nil {
		return nil, err
	}
	f := &tagForest{byID: make(map[int64]queries.Tag, len(all))}
	for _, t := range all {
		f.byID[t.ID] = t
	}
	return f, nil
}

// pathSegments returns the root-to-leaf chain of names for tagID.
func (f *tagForest) pathSegments(tagID int64) ([]string, error) {
	var segments []string
	seen := make(map[int64]bool)
	cur := tagID
	for {
		if seen[cur] {
			return nil, fmt.Errorf("tag forest contains a cycle at tag %d", cur)
		}
		seen[cur] = true

		t, ok := f.byID[cur]
		if !ok {
			return nil, fmt.Errorf("tag %d not found while resolving path", cur)
		}
		segments = append([]string{t.Name}, segments...)

		if !t.ParentID.Valid {
			return segments, nil
		}
		cur = t.ParentID.Int64
	}
}

// ancestorPrefixedForms returns every prefix of segments joined by "/":
// for ["root","child","leaf"] it returns "root", "root/child",
// "root/child/leaf", so a prefix query like tag:project matches any
// descendant.
func ancestorPrefixedForms(segments []string) []string {
	forms := make([]string, 0, len(segments))
	for i := range segments {
		forms = append(forms, strings.Join(segments[:i+1], "/"))
	}
	return forms
}

// buildTagsText computes the space-joined tags_text mirror column for the
// set of tag ids directly applied to a file.
func buildTagsText(forest *tagForest, appliedTagIDs []int64) (string, error) {
	seen := make(map[string]bool)
	var tokens []string
	for _, id := range appliedTagIDs {
		segments, err := forest.pathSegments(id)
		if err != nil {
			return "", err
		}
		for _, form := range ancestorPrefixedForms(segments) {
			if seen[form] {
				continue
			}
			seen[form] = true
			tokens = append(tokens, form)
		}
	}
	return strings.Join(tokens, " "), nil
}

// buildAttrsText computes the space-joined attrs_text mirror column.
func buildAttrsText(attrs []queries.Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Key+"="+a.Value)
	}
	return strings.Join(parts, " ")
}

// RebuildFileMirror recomputes and replaces the FtsRow for fileID from the
// current relational state (current file path, applied tags, attributes).
// It must run inside the same transaction as the logical write that
// triggered it, so mirror coherence is atomic with the change (§4.1, §8).
func RebuildFileMirror(ctx context.Context, q *queries.Queries, fileID int64) error {
	file, err := q.FindFileByID(ctx, fileID)
	if err != nil {
		return err
	}

	forest, err := loadTagForest(ctx, q)
	if err != nil {
		return err
	}

	tagIDs, err := q.ListTagIDsForFile(ctx, fileID)
	if err != nil {
		return err
	}
	tagsText, err := buildTagsText(forest, tagIDs)
	if err != nil {
		return err
	}

	attrs, err := q.ListAttributesForFile(ctx, fileID)
	if err != nil {
		return err
	}
	attrsText := buildAttrsText(attrs)

	if err := q.DeleteFtsRow(ctx, fileID); err != nil {
		return err
	}
	return q.InsertFtsRow(ctx, fileID, file.Path, tagsText, attrsText)
}

// RebuildAllMirrors rewrites every FtsRow from scratch, one file at a time.
// No migration or command in this repository calls it.
func RebuildAllMirrors(ctx context.Context, q *queries.Queries) error {
	files, err := q.ListAllFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := RebuildFileMirror(ctx, q, f.ID); err != nil {
			return fmt.Errorf("rebuilding mirror for file %d: %w", f.ID, err)
		}
	}
	return nil
}
