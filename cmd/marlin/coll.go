package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/ops"
	"github.com/marlin-md/marlin/internal/store"
)

func newCollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coll",
		Short: "Manage named collections of files",
	}
	cmd.AddCommand(newCollCreateCmd(), newCollAddCmd(), newCollListCmd())
	return cmd
}

func newCollCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new, empty collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(true, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				return ops.NewCollOps(db).Create(ctx, args[0])
			})
		},
	}
}

func newCollAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME GLOB",
		Short: "Add every file matching GLOB to the named collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, pattern := args[0], args[1]
			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				result, err := ops.NewCollOps(db).Add(ctx, name, pattern)
				if result != nil {
					reportBulkResult(cmd, log, result)
				}
				return err
			})
		},
	}
}

func newCollListCmd() *cobra.Command {
	var membersOf string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections, or a single collection's members with --members-of",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(formatFlag); err != nil {
				return err
			}

			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				collOps := ops.NewCollOps(db)

				if membersOf != "" {
					members, err := collOps.ListMembers(ctx, membersOf)
					if err != nil {
						return err
					}
					if formatFlag == "json" {
						return outputJSON(cmd, members)
					}
					rows := make([]table.Row, 0, len(members))
					for _, m := range members {
						rows = append(rows, table.Row{m})
					}
					outputTable(cmd, table.Row{"Path"}, rows)
					return nil
				}

				colls, err := collOps.List(ctx)
				if err != nil {
					return err
				}
				if formatFlag == "json" {
					return outputJSON(cmd, colls)
				}
				rows := make([]table.Row, 0, len(colls))
				for _, c := range colls {
					rows = append(rows, table.Row{c.Name, c.CreatedAt.Format("2006-01-02 15:04:05")})
				}
				outputTable(cmd, table.Row{"Name", "Created"}, rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&membersOf, "members-of", "", "list members of this collection instead of listing collections")
	return cmd
}
