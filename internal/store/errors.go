package store

import "errors"

// Sentinel error kinds surfaced to callers, wrapped with fmt.Errorf. The
// marlin command exits with status 1 on any error; it does not map these
// kinds to distinct exit codes, and --format=json prints no JSON error
// object.
var (
	// ErrNotFound indicates a requested path or entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict indicates a unique-constraint violation (duplicate tag,
	// link, collection, or view name).
	ErrConflict = errors.New("store: conflict")
	// ErrInvalidArgument indicates a malformed glob, DSL query, or tag-path
	// segment.
	ErrInvalidArgument = errors.New("store: invalid argument")
	// ErrStoreBusy indicates lock contention persisted past the retry
	// budget.
	ErrStoreBusy = errors.New("store: busy")
	// ErrStoreCorrupt indicates an integrity check failed; the caller
	// should prompt for restore.
	ErrStoreCorrupt = errors.New("store: corrupt")
	// ErrMigrationFailed indicates a migration aborted; the schema version
	// is unchanged.
	ErrMigrationFailed = errors.New("store: migration failed")
)
