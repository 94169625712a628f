// Package migrations contains the embedded SQL migration files that bring a
// marlin index database from an empty file to the current schema version.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files.
//
//go:embed *.sql
var Files embed.FS
