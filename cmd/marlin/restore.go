package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marlin-md/marlin/internal/config"
	"github.com/marlin-md/marlin/internal/logging"
	"github.com/marlin-md/marlin/internal/snapshot"
	"github.com/marlin-md/marlin/internal/store"
)

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore SNAPSHOT_PATH",
		Short: "Atomically replace the live index with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshotPath := args[0]

			log, err := logging.New(verbose)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			liveDBPath := config.GetDBPath()
			db, err := store.Open(liveDBPath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			ctx := context.Background()
			if err := takeSafetyBackup(ctx, db); err != nil {
				_ = store.Close(db)
				return err
			}

			restored, err := snapshot.Restore(db, liveDBPath, snapshotPath)
			if err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			defer func() { _ = store.Close(restored) }()

			fmt.Fprintln(cmd.OutOrStdout(), "restored from", snapshotPath)
			return nil
		},
	}
}
