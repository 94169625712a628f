package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/marlin-md/marlin/internal/store/queries"
)

func mustUpsertFile(t *testing.T, ctx *Context, path string) int64 {
	t.Helper()
	var fileID int64
	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		res, err := NewFileRepository(q).Upsert(context.Background(), StatInput{Path: path})
		if err != nil {
			return err
		}
		fileID = res.FileID
		return nil
	})
	if err != nil {
		t.Fatalf("upserting %q: %v", path, err)
	}
	return fileID
}

func TestUpsertCreatesFileAndMirrorRow(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/home/user/d/a.md")

	exists, err := ctx.Queries.FtsRowExistsForFile(context.Background(), fileID)
	if err != nil {
		t.Fatalf("checking mirror row: %v", err)
	}
	if !exists {
		t.Fatalf("expected a mirror row for every file")
	}
}

func TestUpsertSkipsUnchangedFile(t *testing.T) {
	ctx := openTestStore(t)
	size := int64(100)
	mtime := int64(1000)

	upsert := func() UpsertResult {
		var res UpsertResult
		err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
			var err error
			res, err = NewFileRepository(q).Upsert(context.Background(), StatInput{
				Path: "/a.txt", Size: &size, Mtime: &mtime,
			})
			return err
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		return res
	}

	first := upsert()
	if !first.Created || !first.Changed {
		t.Fatalf("expected first upsert to create and change, got %+v", first)
	}

	second := upsert()
	if second.Created || second.Changed {
		t.Fatalf("expected second upsert of unchanged stat to be a no-op, got %+v", second)
	}
}

func TestTagApplyMaterializesAncestorPrefixedForms(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/a.md")

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		tagID, err := NewTagRepository(q).EnsureTagPath(context.Background(), "project/alpha/draft")
		if err != nil {
			return err
		}
		return NewTagRepository(q).ApplyTag(context.Background(), fileID, tagID)
	})
	if err != nil {
		t.Fatalf("tagging: %v", err)
	}

	var tagsText string
	row := ctx.DB.QueryRow(`SELECT tags_text FROM files_fts WHERE rowid = ?`, fileID)
	if err := row.Scan(&tagsText); err != nil {
		t.Fatalf("reading mirror row: %v", err)
	}

	for _, want := range []string{"project", "project/alpha", "project/alpha/draft"} {
		if !strings.Contains(tagsText, want) {
			t.Errorf("expected tags_text %q to contain ancestor form %q", tagsText, want)
		}
	}
}

func TestTagAddTwiceIsNoopOnMembership(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/a.md")

	apply := func() error {
		return ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
			tagID, err := NewTagRepository(q).EnsureTagPath(context.Background(), "project/md")
			if err != nil {
				return err
			}
			return NewTagRepository(q).ApplyTag(context.Background(), fileID, tagID)
		})
	}

	if err := apply(); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := apply(); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var count int
	if err := ctx.DB.QueryRow(`SELECT COUNT(*) FROM file_tags WHERE file_id = ?`, fileID).Scan(&count); err != nil {
		t.Fatalf("counting file_tags: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one membership row, got %d", count)
	}
}

func TestAttributeSetUpsertsAndRebuildsMirror(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/r.pdf")

	set := func(value string) error {
		return ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
			return NewAttributeRepository(q).Set(context.Background(), fileID, "reviewed", value)
		})
	}

	if err := set("no"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := set("yes"); err != nil {
		t.Fatalf("set: %v", err)
	}

	attrs, err := NewAttributeRepository(ctx.Queries).List(context.Background(), fileID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attrs) != 1 || attrs[0].Value != "yes" {
		t.Fatalf("expected single upserted attribute with value yes, got %+v", attrs)
	}

	var attrsText string
	if err := ctx.DB.QueryRow(`SELECT attrs_text FROM files_fts WHERE rowid = ?`, fileID).Scan(&attrsText); err != nil {
		t.Fatalf("reading mirror row: %v", err)
	}
	if attrsText != "reviewed=yes" {
		t.Fatalf("expected attrs_text %q, got %q", "reviewed=yes", attrsText)
	}
}

func TestRenamePathPropagatesToMirror(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/a.md")

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		return NewFileRepository(q).RenamePath(context.Background(), fileID, "/d/a2.md")
	})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, err := NewFileRepository(ctx.Queries).FindByPath(context.Background(), "/d/a.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old path gone, got %v", err)
	}
	rec, err := NewFileRepository(ctx.Queries).FindByPath(context.Background(), "/d/a2.md")
	if err != nil {
		t.Fatalf("expected new path present: %v", err)
	}
	if rec.ID != fileID {
		t.Fatalf("expected same file id after rename")
	}

	var mirrorPath string
	if err := ctx.DB.QueryRow(`SELECT path FROM files_fts WHERE rowid = ?`, fileID).Scan(&mirrorPath); err != nil {
		t.Fatalf("reading mirror row: %v", err)
	}
	if mirrorPath != "/d/a2.md" {
		t.Fatalf("expected mirror path updated, got %q", mirrorPath)
	}
}

func TestRenamePrefixRewritesDescendants(t *testing.T) {
	ctx := openTestStore(t)
	mustUpsertFile(t, ctx, "/d/old/a.md")
	mustUpsertFile(t, ctx, "/d/old/sub/b.md")
	mustUpsertFile(t, ctx, "/d/old-sibling/c.md")

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		_, err := NewFileRepository(q).RenamePrefix(context.Background(), "/d/old", "/d/new")
		return err
	})
	if err != nil {
		t.Fatalf("rename prefix: %v", err)
	}

	for _, want := range []string{"/d/new/a.md", "/d/new/sub/b.md"} {
		if _, err := NewFileRepository(ctx.Queries).FindByPath(context.Background(), want); err != nil {
			t.Fatalf("expected %q to exist after prefix rename: %v", want, err)
		}
	}
	if _, err := NewFileRepository(ctx.Queries).FindByPath(context.Background(), "/d/old-sibling/c.md"); err != nil {
		t.Fatalf("expected sibling with similar prefix to be untouched: %v", err)
	}
}

func TestLinkAddEnforcesUniqueness(t *testing.T) {
	ctx := openTestStore(t)
	srcID := mustUpsertFile(t, ctx, "/d/foo.txt")
	dstID := mustUpsertFile(t, ctx, "/d/bar.txt")
	typ := "references"

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		return NewLinkRepository(q).Add(context.Background(), srcID, dstID, &typ)
	})
	if err != nil {
		t.Fatalf("first add: %v", err)
	}

	err = ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		return NewLinkRepository(q).Add(context.Background(), srcID, dstID, &typ)
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate link, got %v", err)
	}
}

func TestLinkListAndBacklinks(t *testing.T) {
	ctx := openTestStore(t)
	srcID := mustUpsertFile(t, ctx, "/d/foo.txt")
	mustUpsertFile(t, ctx, "/d/bar.txt")
	typ := "references"

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		dst, err := NewFileRepository(q).FindByPath(context.Background(), "/d/bar.txt")
		if err != nil {
			return err
		}
		return NewLinkRepository(q).Add(context.Background(), srcID, dst.ID, &typ)
	})
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	dstFile, err := NewFileRepository(ctx.Queries).FindByPath(context.Background(), "/d/bar.txt")
	if err != nil {
		t.Fatalf("find dst: %v", err)
	}

	out, err := NewLinkRepository(ctx.Queries).List(context.Background(), srcID, DirectionOut)
	if err != nil {
		t.Fatalf("list out: %v", err)
	}
	if len(out) != 1 || out[0].Path != "/d/bar.txt" {
		t.Fatalf("expected single outgoing neighbor bar.txt, got %+v", out)
	}

	back, err := NewLinkRepository(ctx.Queries).Backlinks(context.Background(), dstFile.ID)
	if err != nil {
		t.Fatalf("backlinks: %v", err)
	}
	if len(back) != 1 || back[0].Path != "/d/foo.txt" {
		t.Fatalf("expected single backlink foo.txt, got %+v", back)
	}
}

func TestCollectionCreateAddList(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/a.md")

	var collID int64
	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		id, err := NewCollectionRepository(q).Create(context.Background(), "reading-list")
		if err != nil {
			return err
		}
		collID = id
		return NewCollectionRepository(q).AddFile(context.Background(), id, fileID)
	})
	if err != nil {
		t.Fatalf("create/add: %v", err)
	}

	paths, err := NewCollectionRepository(ctx.Queries).ListFiles(context.Background(), collID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/d/a.md" {
		t.Fatalf("expected single member a.md, got %+v", paths)
	}

	err = ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		_, err := NewCollectionRepository(q).Create(context.Background(), "reading-list")
		return err
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate collection name, got %v", err)
	}
}

func TestViewSaveAndFind(t *testing.T) {
	ctx := openTestStore(t)

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		_, err := NewViewRepository(q).Save(context.Background(), "drafts", "tag:project/draft")
		return err
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	v, err := NewViewRepository(ctx.Queries).FindByName(context.Background(), "drafts")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if v.Query != "tag:project/draft" {
		t.Fatalf("expected stored query verbatim, got %q", v.Query)
	}
}

func TestDirtyMarkRoundTrip(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/a.md")

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		return NewDirtyMarkRepository(q).Mark(context.Background(), fileID, 1700000000)
	})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}

	marks, err := NewDirtyMarkRepository(ctx.Queries).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(marks) != 1 || marks[0].FileID != fileID {
		t.Fatalf("expected single dirty mark for file, got %+v", marks)
	}

	err = ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		return NewDirtyMarkRepository(q).Clear(context.Background(), fileID)
	})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}

	marks, err = NewDirtyMarkRepository(ctx.Queries).List(context.Background())
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(marks) != 0 {
		t.Fatalf("expected no dirty marks after clear, got %+v", marks)
	}
}

func TestFileDeleteCascades(t *testing.T) {
	ctx := openTestStore(t)
	fileID := mustUpsertFile(t, ctx, "/d/a.md")

	err := ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		if err := NewAttributeRepository(q).Set(context.Background(), fileID, "k", "v"); err != nil {
			return err
		}
		tagID, err := NewTagRepository(q).EnsureTagPath(context.Background(), "project")
		if err != nil {
			return err
		}
		return NewTagRepository(q).ApplyTag(context.Background(), fileID, tagID)
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = ctx.WithTx(context.Background(), func(_ *sql.Tx, q *queries.Queries) error {
		_, err := NewFileRepository(q).Delete(context.Background(), fileID)
		return err
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err := ctx.Queries.FtsRowExistsForFile(context.Background(), fileID)
	if err != nil {
		t.Fatalf("checking mirror row: %v", err)
	}
	if exists {
		t.Fatalf("expected mirror row removed on file delete")
	}

	var attrCount int
	if err := ctx.DB.QueryRow(`SELECT COUNT(*) FROM attributes WHERE file_id = ?`, fileID).Scan(&attrCount); err != nil {
		t.Fatalf("counting attributes: %v", err)
	}
	if attrCount != 0 {
		t.Fatalf("expected attributes cascaded on delete, got %d", attrCount)
	}
}
