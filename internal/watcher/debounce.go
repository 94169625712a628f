package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces events per path within a fixed window (default 100ms,
// §4.5), keyed by a per-path time.Timer. A queue cap bounds memory; paths
// beyond the cap are reported to onOverflow instead of tracked, so the
// caller can downgrade them to a "dirty root" mark.
type Debouncer struct {
	mu         sync.Mutex
	window     time.Duration
	maxPending int
	pending    map[string]*pendingEntry
	onFlush    func(Event)
	onOverflow func(path string)
}

type pendingEntry struct {
	event Event
	timer *time.Timer
}

// NewDebouncer constructs a Debouncer. onFlush is invoked once per path
// when its window elapses or Flush/DrainAll force it; onOverflow is
// invoked when maxPending is exceeded by a never-before-seen path.
func NewDebouncer(window time.Duration, maxPending int, onFlush func(Event), onOverflow func(path string)) *Debouncer {
	return &Debouncer{
		window:     window,
		maxPending: maxPending,
		pending:    make(map[string]*pendingEntry),
		onFlush:    onFlush,
		onOverflow: onOverflow,
	}
}

// Add records e, coalescing it with any already-pending event for the same
// path. A directory Modify absorbs any child Modify arriving in the same
// window, per §4.5.
func (d *Debouncer) Add(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e.Kind == KindModify && d.absorbedByPendingDirModify(e.Path) {
		return
	}

	if existing, ok := d.pending[e.Path]; ok {
		existing.event.Kind = coalesce(existing.event.Kind, e.Kind)
		existing.event.Timestamp = e.Timestamp
		if e.Kind == KindRename {
			existing.event.OldPath = e.OldPath
			existing.event.NewPath = e.NewPath
		}
		return
	}

	if len(d.pending) >= d.maxPending {
		if d.onOverflow != nil {
			d.onOverflow(e.Path)
		}
		return
	}

	path := e.Path
	entry := &pendingEntry{event: e}
	entry.timer = time.AfterFunc(d.window, func() { d.flush(path) })
	d.pending[path] = entry
}

// absorbedByPendingDirModify reports whether path is a descendant of a
// directory that already has a pending Modify in this window.
func (d *Debouncer) absorbedByPendingDirModify(path string) bool {
	for pendingPath, entry := range d.pending {
		if entry.event.IsDir && entry.event.Kind == KindModify && isDescendant(pendingPath, path) {
			return true
		}
	}
	return false
}

func isDescendant(dir, path string) bool {
	if dir == path {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

func (d *Debouncer) flush(path string) {
	d.mu.Lock()
	entry, ok := d.pending[path]
	if ok {
		delete(d.pending, path)
	}
	d.mu.Unlock()

	if ok && d.onFlush != nil {
		d.onFlush(entry.event)
	}
}

// DrainAll stops every pending timer and returns the accumulated events
// immediately, for the ShuttingDown drain window and for Paused->Watching
// resume replay.
func (d *Debouncer) DrainAll() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Event, 0, len(d.pending))
	for path, entry := range d.pending {
		entry.timer.Stop()
		out = append(out, entry.event)
		delete(d.pending, path)
	}
	return out
}

// Len reports how many paths currently have a pending event.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
