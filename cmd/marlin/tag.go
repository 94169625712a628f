package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/ops"
	"github.com/marlin-md/marlin/internal/store"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag GLOB TAG_PATH",
		Short: "Apply a hierarchical tag to every file matching GLOB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, tagPath := args[0], args[1]
			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := ops.NewTagOps(db).Add(ctx, pattern, tagPath)
				if result != nil {
					reportBulkResult(cmd, log, result)
				}
				return err
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rm GLOB TAG_PATH",
		Short: "Remove a tag from every file matching GLOB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, tagPath := args[0], args[1]
			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := ops.NewTagOps(db).Remove(ctx, pattern, tagPath)
				if result != nil {
					reportBulkResult(cmd, log, result)
				}
				return err
			})
		},
	})

	return cmd
}

// reportBulkResult prints per-item failures (logged at Warn, §7) and a
// one-line summary, matching §8's "print the full BulkResult regardless".
func reportBulkResult(cmd *cobra.Command, log *zap.Logger, result *ops.BulkResult) {
	for path, err := range result.Failed {
		log.Warn("operation failed for path", zap.String("path", path), zap.Error(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "succeeded=%d failed=%d\n", len(result.Succeeded), len(result.Failed))
}
