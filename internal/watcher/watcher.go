// Package watcher implements marlin's live filesystem watcher: the
// Initializing/Watching/Paused/ShuttingDown/Stopped lifecycle, per-path
// debouncing, and rename pairing described in §4.5.
package watcher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/config"
	"github.com/marlin-md/marlin/internal/scanner"
	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/store/queries"
)

// maxPendingPaths bounds the debouncer's memory; beyond this, new paths
// overflow to a dirty-root mark instead of being tracked individually.
const maxPendingPaths = 10000

// Watcher ingests filesystem events for a set of roots, debounces them,
// and applies the coalesced result to the store, marking affected files
// dirty so `scan --dirty` can verify the watcher's view.
type Watcher struct {
	db       *store.Context
	log      *zap.Logger
	roots    []string
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	pairer   *renamePairer
	sm       *stateMachine

	drainTimeout time.Duration

	applyCh chan Event
	done    chan struct{}

	heldMu sync.Mutex
	held   []Event
}

// Options configures a Watcher's timing. Zero values fall back to the
// config package's defaults.
type Options struct {
	DebounceWindow time.Duration
	DrainTimeout   time.Duration
}

// New constructs a Watcher over roots, not yet started.
func New(db *store.Context, roots []string, log *zap.Logger, opts Options) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DebounceWindow == 0 {
		opts.DebounceWindow = time.Duration(config.DefaultDebounceWindowMillis) * time.Millisecond
	}
	if opts.DrainTimeout == 0 {
		opts.DrainTimeout = time.Duration(config.DefaultDrainTimeoutSeconds) * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		db:           db,
		log:          log,
		roots:        roots,
		fsw:          fsw,
		pairer:       newRenamePairer(opts.DebounceWindow),
		sm:           newStateMachine(),
		drainTimeout: opts.DrainTimeout,
		applyCh:      make(chan Event, 256),
		done:         make(chan struct{}),
	}
	w.debounce = NewDebouncer(opts.DebounceWindow, maxPendingPaths, w.onDebounceFlush, w.onOverflow)
	return w, nil
}

// State reports the watcher's current lifecycle state.
func (w *Watcher) State() State { return w.sm.current() }

// Start runs the Initializing phase (watch subscriptions plus a catch-up
// scan) and transitions to Watching, then launches the event and apply
// loops in the background.
func (w *Watcher) Start(ctx context.Context) error {
	return w.sm.transition(Watching, func() error {
		for _, root := range w.roots {
			if err := w.addRecursive(root); err != nil {
				return fmt.Errorf("watcher: subscribing to %q: %w", root, err)
			}
		}

		if _, err := scanner.New(w.db, w.log).Scan(ctx, w.roots, scanner.ModeFull); err != nil {
			return fmt.Errorf("watcher: catch-up scan: %w", err)
		}

		go w.applyLoop(ctx)
		go w.eventLoop(ctx)
		return nil
	})
}

// Pause transitions Watching -> Paused. Events continue to be debounced
// but flushed events are held rather than applied until Resume.
func (w *Watcher) Pause() error {
	return w.sm.transition(Paused, nil)
}

// Resume transitions Paused -> Watching and replays any events held while
// paused, in the order they were originally flushed.
func (w *Watcher) Resume(ctx context.Context) error {
	return w.sm.transition(Watching, func() error {
		w.heldMu.Lock()
		held := w.held
		w.held = nil
		w.heldMu.Unlock()

		for _, e := range held {
			if err := w.applyEvent(ctx, e); err != nil {
				w.log.Warn("failed to apply held event", zap.String("path", e.Path), zap.Error(err))
			}
		}
		return nil
	})
}

// Shutdown transitions to ShuttingDown, drains pending events for up to
// the configured drain timeout, converts whatever is still unapplied to
// dirty marks, then transitions to Stopped.
func (w *Watcher) Shutdown(ctx context.Context) error {
	err := w.sm.transition(ShuttingDown, func() error {
		close(w.done)
		return w.fsw.Close()
	})
	if err != nil {
		return err
	}

	deadline := time.After(w.drainTimeout)
	drained := make(chan struct{})
	go func() {
		for _, e := range w.debounce.DrainAll() {
			if applyErr := w.applyEvent(ctx, e); applyErr != nil {
				w.log.Warn("failed to apply event during shutdown drain", zap.String("path", e.Path), zap.Error(applyErr))
			}
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-deadline:
		for _, e := range w.debounce.DrainAll() {
			if markErr := w.markDirtyOnly(ctx, e.Path); markErr != nil {
				w.log.Warn("failed to convert drained event to dirty mark", zap.String("path", e.Path), zap.Error(markErr))
			}
		}
	}

	return w.sm.transition(Stopped, nil)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				w.log.Warn("skipping unreadable directory", zap.String("path", path), zap.Error(err))
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleRawEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher event source error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleRawEvent(ev fsnotify.Event) {
	now := time.Now()
	info, statErr := os.Lstat(ev.Name)
	isDir := statErr == nil && info.IsDir()

	switch {
	case ev.Op&fsnotify.Create != 0:
		if isDir {
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.Warn("failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
		}
		size := int64(0)
		if statErr == nil {
			size = info.Size()
		}
		if oldPath, ok := w.pairer.MatchCreate(size, now); ok {
			w.debounce.Add(Event{Path: ev.Name, Kind: KindRename, Timestamp: now, IsDir: isDir, OldPath: oldPath, NewPath: ev.Name})
			return
		}
		w.debounce.Add(Event{Path: ev.Name, Kind: KindCreate, Timestamp: now, IsDir: isDir})

	case ev.Op&fsnotify.Write != 0:
		w.debounce.Add(Event{Path: ev.Name, Kind: KindModify, Timestamp: now, IsDir: isDir})

	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		size := w.lastKnownSize(ev.Name)
		w.pairer.ObserveDelete(ev.Name, size, now)
		w.debounce.Add(Event{Path: ev.Name, Kind: KindDelete, Timestamp: now})

	case ev.Op&fsnotify.Chmod != 0:
		w.debounce.Add(Event{Path: ev.Name, Kind: KindAccess, Timestamp: now, IsDir: isDir})
	}
}

// lastKnownSize reads the store's last recorded size for path, used to key
// the rename pairer after the file itself is already gone from disk.
func (w *Watcher) lastKnownSize(path string) int64 {
	rec, err := store.NewFileRepository(w.db.Queries).FindByPath(context.Background(), path)
	if err != nil || rec.Size == nil {
		return 0
	}
	return *rec.Size
}

func (w *Watcher) onDebounceFlush(e Event) {
	select {
	case w.applyCh <- e:
	case <-w.done:
	}
}

func (w *Watcher) onOverflow(path string) {
	w.log.Warn("watcher queue cap exceeded, downgrading to dirty root", zap.String("path", path))
	if err := w.markDirtyOnly(context.Background(), path); err != nil {
		w.log.Warn("failed to mark overflowed path dirty", zap.String("path", path), zap.Error(err))
	}
}

func (w *Watcher) applyLoop(ctx context.Context) {
	for {
		select {
		case <-w.done:
			return
		case e := <-w.applyCh:
			if w.sm.current() == Paused {
				w.heldMu.Lock()
				w.held = append(w.held, e)
				w.heldMu.Unlock()
				continue
			}
			if err := w.applyEvent(ctx, e); err != nil {
				w.log.Warn("failed to apply event", zap.String("path", e.Path), zap.Error(err))
			}
		}
	}
}

// applyEvent performs §4.5's "Effects on the store" for one coalesced
// event, inside a single write transaction.
func (w *Watcher) applyEvent(ctx context.Context, e Event) error {
	switch e.Kind {
	case KindCreate, KindModify, KindAccess:
		return w.applyUpsert(ctx, e.Path)
	case KindDelete:
		return w.markDirtyOnly(ctx, e.Path)
	case KindRename:
		return w.applyRename(ctx, e.OldPath, e.NewPath)
	default:
		return nil
	}
}

func (w *Watcher) applyUpsert(ctx context.Context, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return w.markDirtyOnly(ctx, path)
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	size := info.Size()
	mtime := info.ModTime().Unix()
	return w.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		res, err := store.NewFileRepository(q).Upsert(ctx, store.StatInput{Path: path, Size: &size, Mtime: &mtime})
		if err != nil {
			return err
		}
		return store.NewDirtyMarkRepository(q).Mark(ctx, res.FileID, mtime)
	})
}

// markDirtyOnly marks an already-indexed path dirty without upserting,
// used for Delete events (§4.5: "mark removal candidate") so that
// `scan --dirty` discovers and reports the file's disappearance.
func (w *Watcher) markDirtyOnly(ctx context.Context, path string) error {
	return w.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		file, err := store.NewFileRepository(q).FindByPath(ctx, path)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		return store.NewDirtyMarkRepository(q).Mark(ctx, file.ID, time.Now().Unix())
	})
}

// applyRename implements §4.5's rename effect: a single-row path update
// when oldPath itself was an indexed file, or a prefix rewrite across every
// file under oldPath when it was only a directory prefix.
func (w *Watcher) applyRename(ctx context.Context, oldPath, newPath string) error {
	return w.db.WithTx(ctx, func(_ *sql.Tx, q *queries.Queries) error {
		fileRepo := store.NewFileRepository(q)
		file, err := fileRepo.FindByPath(ctx, oldPath)
		if err == nil {
			return fileRepo.RenamePath(ctx, file.ID, newPath)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		_, err = fileRepo.RenamePrefix(ctx, oldPath, newPath)
		return err
	})
}
