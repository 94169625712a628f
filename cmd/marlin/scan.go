package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/scanner"
	"github.com/marlin-md/marlin/internal/store"
)

func newScanCmd() *cobra.Command {
	var dirty bool

	cmd := &cobra.Command{
		Use:   "scan PATHS...",
		Short: "Index or re-index one or more roots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := scanner.ModeFull
			if dirty {
				mode = scanner.ModeDirty
			}

			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := scanner.New(db, log).Scan(ctx, args, mode)
				if err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed=%d updated=%d skipped=%d errored=%d\n",
					result.Indexed, result.Updated, result.Skipped, result.Errored)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dirty, "dirty", false, "re-stat only files marked dirty by the watcher, ignoring PATHS")
	return cmd
}
