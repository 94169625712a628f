package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/config"
	"github.com/marlin-md/marlin/internal/logging"
	"github.com/marlin-md/marlin/internal/snapshot"
	"github.com/marlin-md/marlin/internal/store"
)

// withStore opens the live index, runs fn, and closes the index afterward.
// When autoBackup is true, a safety snapshot is taken before fn runs — per
// §4.6, before any mutating command except init and backup itself. A
// snapshot failure aborts the command without running fn.
func withStore(autoBackup bool, fn func(ctx context.Context, db *store.Context, log *zap.Logger) error) error {
	log, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open("")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = store.Close(db) }()

	ctx := context.Background()

	if autoBackup {
		if err := takeSafetyBackup(ctx, db); err != nil {
			return err
		}
	}

	return fn(ctx, db, log)
}

func takeSafetyBackup(ctx context.Context, db *store.Context) error {
	engine := snapshot.New(config.GetBackupDir(), nil)
	if _, err := engine.Create(ctx, db); err != nil {
		return fmt.Errorf("auto-safety backup failed, aborting: %w", err)
	}
	return nil
}
