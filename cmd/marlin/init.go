package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/scanner"
	"github.com/marlin-md/marlin/internal/store"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the index, then scan the current working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			return withStore(false, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := scanner.New(db, log).Scan(ctx, []string{cwd}, scanner.ModeFull)
				if err != nil {
					return fmt.Errorf("initial scan: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed=%d updated=%d skipped=%d errored=%d\n",
					result.Indexed, result.Updated, result.Skipped, result.Errored)
				return nil
			})
		},
	}
}
