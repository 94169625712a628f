package config

import (
	"path/filepath"
	"testing"
)

func TestGetDataDirWithExplicitEnv(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(tmpDir, "custom")

	t.Setenv("MARLIN_DATA_DIR", customDir)
	t.Setenv("MARLIN_DB_PATH", "")
	t.Setenv("XDG_DATA_HOME", "")

	got := GetDataDir()
	if got != customDir {
		t.Fatalf("expected %q, got %q", customDir, got)
	}
}

func TestGetDataDirFromDBPath(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("MARLIN_DATA_DIR", "")
	t.Setenv("MARLIN_DB_PATH", filepath.Join(tmpDir, "custom.db"))

	got := GetDataDir()
	if got != tmpDir {
		t.Fatalf("expected %q, got %q", tmpDir, got)
	}
}

func TestGetDataDirFallsBackToXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := filepath.Join(tmpDir, "xdg")

	t.Setenv("MARLIN_DATA_DIR", "")
	t.Setenv("MARLIN_DB_PATH", "")
	t.Setenv("XDG_DATA_HOME", xdgDir)

	got := GetDataDir()
	want := filepath.Join(xdgDir, "marlin")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetDBAndBackupPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("MARLIN_DATA_DIR", tmpDir)
	t.Setenv("MARLIN_DB_PATH", "")

	if got, want := GetDBPath(), filepath.Join(tmpDir, "index.db"); got != want {
		t.Fatalf("GetDBPath expected %q, got %q", want, got)
	}

	if got, want := GetBackupDir(), filepath.Join(tmpDir, "backups"); got != want {
		t.Fatalf("GetBackupDir expected %q, got %q", want, got)
	}
}

func TestGetDBPathExplicitOverride(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "other.db")
	t.Setenv("MARLIN_DB_PATH", explicit)

	if got := GetDBPath(); got != explicit {
		t.Fatalf("expected %q, got %q", explicit, got)
	}
}

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("~/docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "docs" {
		t.Fatalf("expected path ending in docs, got %q", got)
	}

	unchanged, err := ExpandHome("/already/absolute")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unchanged != "/already/absolute" {
		t.Fatalf("expected unchanged path, got %q", unchanged)
	}
}

func TestNormalizePathUsesForwardSlashes(t *testing.T) {
	got, err := NormalizePath("relative/dir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.FromSlash(got) != got && filepath.Separator != '/' {
		t.Fatalf("expected forward-slash path, got %q", got)
	}
	if got == "" || got[0] != '/' {
		t.Fatalf("expected absolute forward-slash path, got %q", got)
	}
}
