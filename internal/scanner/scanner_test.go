package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marlin-md/marlin/internal/store"
)

func openTestStore(t *testing.T) *store.Context {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ctx, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(ctx) })
	return ctx
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestScanFullIndexesFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "world")

	db := openTestStore(t)
	s := New(db, nil)

	result, err := s.Scan(context.Background(), []string{root}, ModeFull)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Indexed != 2 {
		t.Fatalf("Indexed = %d, want 2", result.Indexed)
	}

	count, err := store.NewFileRepository(db.Queries).Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("Count = %d, want 2", count)
	}
}

func TestScanFullRerunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")

	db := openTestStore(t)
	s := New(db, nil)

	if _, err := s.Scan(context.Background(), []string{root}, ModeFull); err != nil {
		t.Fatalf("first Scan: %v", err)
	}

	result, err := s.Scan(context.Background(), []string{root}, ModeFull)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if result.Indexed != 0 || result.Updated != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want all skipped", result)
	}
}

func TestScanFullDetectsChangedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")

	db := openTestStore(t)
	s := New(db, nil)

	if _, err := s.Scan(context.Background(), []string{root}, ModeFull); err != nil {
		t.Fatalf("first Scan: %v", err)
	}

	writeFile(t, path, "hello, much longer now")

	result, err := s.Scan(context.Background(), []string{root}, ModeFull)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", result.Updated)
	}
}

func TestScanFullHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "keep")
	writeFile(t, filepath.Join(root, "skip.log"), "skip")
	writeFile(t, filepath.Join(root, IgnoreFileName), "*.log\n")

	db := openTestStore(t)
	s := New(db, nil)

	result, err := s.Scan(context.Background(), []string{root}, ModeFull)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Indexed != 1 {
		t.Fatalf("Indexed = %d, want 1 (ignore file itself and skip.log excluded)", result.Indexed)
	}

	if _, err := store.NewFileRepository(db.Queries).FindByPath(context.Background(), filepath.ToSlash(filepath.Join(root, "keep.txt"))); err != nil {
		t.Fatalf("expected keep.txt indexed: %v", err)
	}
}

func TestScanDirtyRestatsMarkedFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")

	db := openTestStore(t)
	s := New(db, nil)

	if _, err := s.Scan(context.Background(), []string{root}, ModeFull); err != nil {
		t.Fatalf("initial Scan: %v", err)
	}

	normPath := filepath.ToSlash(path)
	rec, err := store.NewFileRepository(db.Queries).FindByPath(context.Background(), normPath)
	if err != nil {
		t.Fatalf("FindByPath: %v", err)
	}

	if err := store.NewDirtyMarkRepository(db.Queries).Mark(context.Background(), rec.ID, 1); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	writeFile(t, path, "hello, updated via dirty path")

	result, err := s.Scan(context.Background(), nil, ModeDirty)
	if err != nil {
		t.Fatalf("dirty Scan: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", result.Updated)
	}

	count, err := store.NewDirtyMarkRepository(db.Queries).Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected dirty marks cleared, got %d", count)
	}
}

func TestScanDirtySkipsVanishedFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")

	db := openTestStore(t)
	s := New(db, nil)

	if _, err := s.Scan(context.Background(), []string{root}, ModeFull); err != nil {
		t.Fatalf("initial Scan: %v", err)
	}
	rec, err := store.NewFileRepository(db.Queries).FindByPath(context.Background(), filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("FindByPath: %v", err)
	}
	if err := store.NewDirtyMarkRepository(db.Queries).Mark(context.Background(), rec.ID, 1); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	result, err := s.Scan(context.Background(), nil, ModeDirty)
	if err != nil {
		t.Fatalf("dirty Scan: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", result.Skipped)
	}
}

func TestIgnoreMatcherBasenameAndPathPatterns(t *testing.T) {
	m := NewIgnoreMatcher([]string{"*.log", "build/output", "# comment", ""})
	if !m.Match("nested/debug.log") {
		t.Fatalf("expected basename pattern to match nested path")
	}
	if !m.Match("build/output") {
		t.Fatalf("expected path pattern to match")
	}
	if m.Match("build/output/keep.txt") {
		t.Fatalf("did not expect path pattern to match a deeper descendant")
	}
	if m.Match("keep.txt") {
		t.Fatalf("did not expect keep.txt to match")
	}
}
