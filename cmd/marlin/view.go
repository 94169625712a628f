package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/ops"
	"github.com/marlin-md/marlin/internal/query"
	"github.com/marlin-md/marlin/internal/store"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage saved full-text-search views",
	}
	cmd.AddCommand(newViewSaveCmd(), newViewListCmd(), newViewExecCmd())
	return cmd
}

func newViewSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME QUERY",
		Short: "Save a DSL query under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, q := args[0], args[1]
			if _, err := query.CompileString(q); err != nil {
				return fmt.Errorf("invalid query: %w", err)
			}
			return withStore(true, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				return ops.NewViewOps(db).Save(ctx, name, q)
			})
		},
	}
}

func newViewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(formatFlag); err != nil {
				return err
			}
			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				views, err := ops.NewViewOps(db).List(ctx)
				if err != nil {
					return err
				}
				if formatFlag == "json" {
					return outputJSON(cmd, views)
				}
				rows := make([]table.Row, 0, len(views))
				for _, v := range views {
					rows = append(rows, table.Row{v.Name, v.Query, v.CreatedAt.Format("2006-01-02 15:04:05")})
				}
				outputTable(cmd, table.Row{"Name", "Query", "Created"}, rows)
				return nil
			})
		},
	}
}

func newViewExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec NAME",
		Short: "Run a saved view's query and print matching paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				view, err := ops.NewViewOps(db).Find(ctx, args[0])
				if err != nil {
					return err
				}
				paths, err := query.Search(ctx, db, view.Query)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	}
}
