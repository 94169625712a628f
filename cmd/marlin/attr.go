package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/ops"
	"github.com/marlin-md/marlin/internal/store"
)

func newAttrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attr",
		Short: "Manage per-file key/value attributes",
	}

	cmd.AddCommand(newAttrSetCmd(), newAttrLsCmd(), newAttrRmCmd())
	return cmd
}

func newAttrSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set GLOB KEY VALUE",
		Short: "Upsert an attribute on every file matching GLOB",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, key, value := args[0], args[1], args[2]
			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := ops.NewAttrOps(db).Set(ctx, pattern, key, value)
				if result != nil {
					reportBulkResult(cmd, log, result)
				}
				return err
			})
		},
	}
}

func newAttrLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls PATH",
		Short: "Print a file's attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateFormat(formatFlag); err != nil {
				return err
			}

			return withStore(false, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				attrs, err := ops.NewAttrOps(db).List(ctx, path)
				if err != nil {
					return err
				}

				if formatFlag == "json" {
					type attrEntry struct {
						Key   string `json:"key"`
						Value string `json:"value"`
					}
					out := make([]attrEntry, 0, len(attrs))
					for _, a := range attrs {
						out = append(out, attrEntry{Key: a.Key, Value: a.Value})
					}
					return outputJSON(cmd, out)
				}

				rows := make([]table.Row, 0, len(attrs))
				for _, a := range attrs {
					rows = append(rows, table.Row{a.Key, a.Value})
				}
				outputTable(cmd, table.Row{"Key", "Value"}, rows)
				return nil
			})
		},
	}
}

func newAttrRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm GLOB KEY",
		Short: "Remove an attribute from every file matching GLOB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, key := args[0], args[1]
			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := ops.NewAttrOps(db).Remove(ctx, pattern, key)
				if result != nil {
					reportBulkResult(cmd, log, result)
				}
				return err
			})
		},
	}
}
