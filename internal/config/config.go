// Package config resolves marlin's on-disk layout: where the index database
// lives, where backups are written, and canonical path normalization for
// storage.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDataDir resolves the base directory for all marlin state. It checks
// MARLIN_DATA_DIR, then derives from MARLIN_DB_PATH when that names a
// specific file, then XDG paths, and finally falls back to the user's home
// directory.
func GetDataDir() string {
	if explicit := os.Getenv("MARLIN_DATA_DIR"); explicit != "" {
		return explicit
	}

	if dbPath := os.Getenv("MARLIN_DB_PATH"); dbPath != "" {
		return filepath.Dir(dbPath)
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "marlin")
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "marlin")
}

// GetDBPath returns the absolute path to the live index database, honoring
// MARLIN_DB_PATH as a full override before falling back to the data
// directory layout.
func GetDBPath() string {
	if explicit := os.Getenv("MARLIN_DB_PATH"); explicit != "" {
		return explicit
	}
	return filepath.Join(GetDataDir(), "index.db")
}

// GetBackupDir returns the directory snapshots are written into.
func GetBackupDir() string {
	return filepath.Join(GetDataDir(), "backups")
}

// ExpandHome resolves a leading "~" in path to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if path != "~" && path[1] != '/' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// NormalizePath converts path to marlin's canonical stored form: absolute,
// forward-slash separated, home-expanded. Symlinks are preserved, never
// resolved, per the stored-path canonical form the index specification
// requires.
func NormalizePath(path string) (string, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

// DefaultDebounceWindowMillis is the watcher's per-path coalescing interval.
const DefaultDebounceWindowMillis = 100

// DefaultDrainTimeoutSeconds is how long the watcher waits for a graceful
// flush during shutdown before converting queued events to dirty-marks.
const DefaultDrainTimeoutSeconds = 5

// DefaultBackupRetention is a default snapshot count for pruning. The
// `backup --prune N` flag always takes its count from the caller and does
// not read this value.
const DefaultBackupRetention = 10
