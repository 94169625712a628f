package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/config"
	"github.com/marlin-md/marlin/internal/snapshot"
	"github.com/marlin-md/marlin/internal/store"
)

func newBackupCmd() *cobra.Command {
	var pruneN int

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Take a consistent snapshot of the live index, optionally pruning old ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				engine := snapshot.New(config.GetBackupDir(), nil)
				path, err := engine.Create(ctx, db)
				if err != nil {
					return fmt.Errorf("backup: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "backup created", path)

				if cmd.Flags().Changed("prune") {
					kept, removed, err := engine.Prune(pruneN)
					if err != nil {
						return fmt.Errorf("prune: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "kept=%d removed=%d\n", len(kept), len(removed))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&pruneN, "prune", 0, "after backing up, retain only the newest N snapshots")
	return cmd
}
