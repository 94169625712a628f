// Package scanner implements marlin's full and dirty-only directory walks:
// change detection against (size, mtime), batch-bounded write transactions,
// and symlink-loop breaking via a visited-inode set.
package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/config"
	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// Mode selects which files a Scan considers.
type Mode int

const (
	// ModeFull recursively walks every configured root.
	ModeFull Mode = iota
	// ModeDirty re-stats only files previously marked dirty by the watcher.
	ModeDirty
)

// batchSize bounds how many upserts share one write transaction, so a store
// error aborts only the in-flight batch rather than the whole scan (§4.2).
const batchSize = 200

// Result summarizes a scan's outcome, per §4.2's (indexed, updated, skipped,
// errored) interface contract.
type Result struct {
	Indexed int
	Updated int
	Skipped int
	Errored int
}

// Scanner walks configured roots or re-stats dirty marks, upserting File
// rows in bounded-size transactions via the shared store.Context.
type Scanner struct {
	db  *store.Context
	log *zap.Logger
}

// New constructs a Scanner over an open store.
func New(db *store.Context, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{db: db, log: log}
}

// Scan runs mode over roots. Per-file filesystem errors are logged and
// counted without aborting the walk; a store error during a batch commit
// aborts the scan, with that batch rolled back and earlier batches intact.
func (s *Scanner) Scan(ctx context.Context, roots []string, mode Mode) (Result, error) {
	if mode == ModeDirty {
		return s.scanDirty(ctx)
	}
	return s.scanFull(ctx, roots)
}

func (s *Scanner) scanFull(ctx context.Context, roots []string) (Result, error) {
	var result Result
	visited := make(map[string]struct{})
	acc := &batchAccumulator{scanner: s, result: &result}

	normRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		norm, err := config.NormalizePath(root)
		if err != nil {
			s.log.Warn("skipping unresolvable root", zap.String("root", root), zap.Error(err))
			continue
		}
		normRoots = append(normRoots, norm)
	}

	for _, root := range normRoots {
		if err := s.walkTree(ctx, root, root, normRoots, visited, acc); err != nil {
			return result, err
		}
	}

	if err := acc.flush(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Scanner) scanDirty(ctx context.Context) (Result, error) {
	var result Result
	marks, err := store.NewDirtyMarkRepository(s.db.Queries).List(ctx)
	if err != nil {
		return result, err
	}

	acc := &batchAccumulator{scanner: s, result: &result}
	for _, mark := range marks {
		info, err := os.Lstat(mark.Path)
		if err != nil {
			if os.IsNotExist(err) {
				s.log.Info("dirty file no longer exists", zap.String("path", mark.Path))
				result.Skipped++
				continue
			}
			s.log.Warn("failed to stat dirty file", zap.String("path", mark.Path), zap.Error(err))
			result.Errored++
			continue
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			if info, err = os.Stat(mark.Path); err != nil {
				s.log.Warn("failed to resolve dirty symlink", zap.String("path", mark.Path), zap.Error(err))
				result.Errored++
				continue
			}
		}
		if !info.Mode().IsRegular() {
			continue
		}

		size := info.Size()
		mtime := info.ModTime().Unix()
		inode, device, _ := statIdentity(info)
		item := batchItem{
			in: store.StatInput{
				Path:   mark.Path,
				Size:   &size,
				Mtime:  &mtime,
				Inode:  inode,
				Device: device,
			},
			clearMarkID: mark.FileID,
		}
		if err := acc.add(ctx, item); err != nil {
			return result, err
		}
	}

	if err := acc.flush(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// walkTree runs filepath.WalkDir over walkRoot, reporting discovered paths
// under literalRoot instead — the two differ only when walkTree is invoked
// from inside handleSymlink, where walkRoot is a resolved symlink target
// and literalRoot is the symlink's own path, preserving the canonical
// stored-path form (spec.md §6: "symlinks preserved, not resolved").
func (s *Scanner) walkTree(ctx context.Context, walkRoot, literalRoot string, roots []string, visited map[string]struct{}, acc *batchAccumulator) error {
	patterns, err := LoadIgnoreFile(filepath.Join(literalRoot, IgnoreFileName))
	if err != nil {
		s.log.Warn("failed to read ignore file", zap.String("root", literalRoot), zap.Error(err))
	}
	matcher := NewIgnoreMatcher(patterns)

	return filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(walkRoot, p)
		if relErr != nil {
			rel = "."
		}
		literal := literalRoot
		if rel != "." {
			literal = filepath.Join(literalRoot, rel)
		}

		if err != nil {
			if d != nil && d.IsDir() {
				s.log.Warn("skipping unreadable directory", zap.String("path", literal), zap.Error(err))
				return fs.SkipDir
			}
			s.log.Warn("skipping unreadable entry", zap.String("path", literal), zap.Error(err))
			acc.result.Errored++
			return nil
		}

		if matcher.Match(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return s.handleSymlink(ctx, literal, roots, visited, acc)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.log.Warn("stat failed", zap.String("path", literal), zap.Error(err))
			acc.result.Errored++
			return nil
		}
		return s.indexRegularFile(ctx, literal, info, acc)
	})
}

// handleSymlink follows a symlink only if its target resolves under one of
// the configured roots. Directory targets are recursed into, with the
// resolved target's identity added to visited to break cycles; file
// targets are indexed directly.
func (s *Scanner) handleSymlink(ctx context.Context, linkPath string, roots []string, visited map[string]struct{}, acc *batchAccumulator) error {
	target, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		s.log.Warn("unresolvable symlink", zap.String("path", linkPath), zap.Error(err))
		acc.result.Errored++
		return nil
	}
	target = filepath.ToSlash(target)
	if !withinRoots(target, roots) {
		s.log.Debug("symlink target outside configured roots, not followed",
			zap.String("path", linkPath), zap.String("target", target))
		return nil
	}

	info, err := os.Stat(linkPath)
	if err != nil {
		s.log.Warn("unresolvable symlink", zap.String("path", linkPath), zap.Error(err))
		acc.result.Errored++
		return nil
	}

	if info.IsDir() {
		inode, device, _ := statIdentity(info)
		key := visitKey(target, inode, device)
		if _, seen := visited[key]; seen {
			return nil
		}
		visited[key] = struct{}{}
		return s.walkTree(ctx, target, linkPath, roots, visited, acc)
	}

	if !info.Mode().IsRegular() {
		return nil
	}
	return s.indexRegularFile(ctx, linkPath, info, acc)
}

func (s *Scanner) indexRegularFile(ctx context.Context, path string, info fs.FileInfo, acc *batchAccumulator) error {
	normPath, err := config.NormalizePath(path)
	if err != nil || !utf8.ValidString(normPath) {
		s.log.Warn("skipping path with invalid encoding", zap.String("path", path), zap.Error(err))
		acc.result.Errored++
		return nil
	}

	size := info.Size()
	mtime := info.ModTime().Unix()
	inode, device, _ := statIdentity(info)

	return acc.add(ctx, batchItem{
		in: store.StatInput{
			Path:   normPath,
			Size:   &size,
			Mtime:  &mtime,
			Inode:  inode,
			Device: device,
		},
	})
}

func withinRoots(path string, roots []string) bool {
	normalized := filepath.ToSlash(path)
	for _, root := range roots {
		if normalized == root || strings.HasPrefix(normalized, root+"/") {
			return true
		}
	}
	return false
}

func visitKey(target string, inode, device *int64) string {
	if inode != nil && device != nil {
		return fmt.Sprintf("%d:%d", *inode, *device)
	}
	return target
}

// batchItem pairs a pending upsert with the dirty mark it should clear once
// committed. clearMarkID is 0 for full-mode scans, which have no mark.
type batchItem struct {
	in          store.StatInput
	clearMarkID int64
}

type batchAccumulator struct {
	scanner *Scanner
	result  *Result
	pending []batchItem
}

func (a *batchAccumulator) add(ctx context.Context, item batchItem) error {
	a.pending = append(a.pending, item)
	if len(a.pending) >= batchSize {
		return a.flush(ctx)
	}
	return nil
}

func (a *batchAccumulator) flush(ctx context.Context) error {
	if len(a.pending) == 0 {
		return nil
	}
	batch := a.pending
	a.pending = nil

	return a.scanner.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		fileRepo := store.NewFileRepository(q)
		markRepo := store.NewDirtyMarkRepository(q)
		for _, item := range batch {
			res, err := fileRepo.Upsert(ctx, item.in)
			if err != nil {
				return fmt.Errorf("upserting %q: %w", item.in.Path, err)
			}
			switch {
			case res.Created:
				a.result.Indexed++
			case res.Changed:
				a.result.Updated++
			default:
				a.result.Skipped++
			}
			if item.clearMarkID != 0 {
				if err := markRepo.Clear(ctx, item.clearMarkID); err != nil {
					return fmt.Errorf("clearing dirty mark for %q: %w", item.in.Path, err)
				}
			}
		}
		return nil
	})
}
