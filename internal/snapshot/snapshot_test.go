package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marlin-md/marlin/internal/store"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

func openFileStore(t *testing.T) (*store.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ctx, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(ctx) })
	return ctx, dbPath
}

func TestCreateWritesNamedBackup(t *testing.T) {
	db, _ := openFileStore(t)
	backupDir := t.TempDir()

	clock := fakeClock{t: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	e := New(backupDir, clock)

	path, err := e.Create(context.Background(), db)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := filepath.Join(backupDir, "backup_2026-03-04_05-06-07.db")
	if path != want {
		t.Fatalf("Create path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected backup file to exist: %v", err)
	}
}

func TestCreateRejectsDuplicateTimestamp(t *testing.T) {
	db, _ := openFileStore(t)
	backupDir := t.TempDir()
	clock := fakeClock{t: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	e := New(backupDir, clock)

	if _, err := e.Create(context.Background(), db); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := e.Create(context.Background(), db); err == nil {
		t.Fatalf("expected second Create at the same timestamp to fail")
	}
}

func TestListSortsNewestFirst(t *testing.T) {
	backupDir := t.TempDir()
	writeBackupFile(t, backupDir, "backup_2026-01-01_00-00-00.db")
	writeBackupFile(t, backupDir, "backup_2026-03-01_00-00-00.db")
	writeBackupFile(t, backupDir, "backup_2026-02-01_00-00-00.db")
	writeBackupFile(t, backupDir, "not-a-backup.txt")

	e := New(backupDir, nil)
	backups, err := e.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(backups))
	}
	if filepath.Base(backups[0].Path) != "backup_2026-03-01_00-00-00.db" {
		t.Fatalf("newest backup = %q, want the March one first", backups[0].Path)
	}
	if filepath.Base(backups[2].Path) != "backup_2026-01-01_00-00-00.db" {
		t.Fatalf("oldest backup = %q, want the January one last", backups[2].Path)
	}
}

func TestListOnMissingDirectoryReturnsEmpty(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	backups, err := e.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(backups) != 0 {
		t.Fatalf("expected no backups, got %v", backups)
	}
}

func TestPruneKeepsNewestAndRemovesRest(t *testing.T) {
	backupDir := t.TempDir()
	writeBackupFile(t, backupDir, "backup_2026-01-01_00-00-00.db")
	writeBackupFile(t, backupDir, "backup_2026-02-01_00-00-00.db")
	writeBackupFile(t, backupDir, "backup_2026-03-01_00-00-00.db")

	e := New(backupDir, nil)
	kept, removed, err := e.Prune(2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(kept) != 2 || len(removed) != 1 {
		t.Fatalf("kept = %v, removed = %v", kept, removed)
	}
	if filepath.Base(removed[0]) != "backup_2026-01-01_00-00-00.db" {
		t.Fatalf("expected the oldest backup to be removed, got %q", removed[0])
	}
	if _, err := os.Stat(removed[0]); !os.IsNotExist(err) {
		t.Fatalf("expected removed backup file to be gone")
	}
}

func TestRestoreReplacesLiveStore(t *testing.T) {
	db, dbPath := openFileStore(t)
	backupDir := t.TempDir()
	clock := fakeClock{t: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	e := New(backupDir, clock)

	snapshotPath, err := e.Create(context.Background(), db)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened, err := Restore(db, dbPath, snapshotPath)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	defer store.Close(reopened)

	if reopened.Path() != dbPath {
		t.Fatalf("reopened path = %q, want %q", reopened.Path(), dbPath)
	}
	if err := reopened.DB.Ping(); err != nil {
		t.Fatalf("expected reopened store to be usable: %v", err)
	}
}

func TestRestoreRejectsMissingSnapshot(t *testing.T) {
	db, dbPath := openFileStore(t)
	if _, err := Restore(db, dbPath, filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatalf("expected an error for a missing snapshot")
	}
}

func writeBackupFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
