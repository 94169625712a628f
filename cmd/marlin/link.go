package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/ops"
	"github.com/marlin-md/marlin/internal/store"
)

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage typed directed links between files",
	}

	cmd.AddCommand(newLinkAddCmd(), newLinkRmCmd(), newLinkListCmd(), newLinkBacklinksCmd())
	return cmd
}

func newLinkAddCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "add SRC DST",
		Short: "Create a typed edge SRC -> DST",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			return withStore(true, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				return ops.NewLinkOps(db).Add(ctx, src, dst, typePtr(typeFlag))
			})
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "link type (part of the uniqueness key)")
	return cmd
}

func newLinkRmCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "rm SRC DST",
		Short: "Remove the edge SRC -> DST matching --type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			return withStore(true, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				removed, err := ops.NewLinkOps(db).Remove(ctx, src, dst, typePtr(typeFlag))
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: no link from %q to %q", store.ErrNotFound, src, dst)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "link type (part of the uniqueness key)")
	return cmd
}

func newLinkListCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "list PATH",
		Short: "List PATH's outgoing (or --direction in/both) links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(formatFlag); err != nil {
				return err
			}
			dir, err := parseLinkDirection(direction)
			if err != nil {
				return err
			}

			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				neighbors, err := ops.NewLinkOps(db).List(ctx, args[0], dir)
				if err != nil {
					return err
				}
				return renderLinkNeighbors(cmd, neighbors)
			})
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "out", "out, in, or both")
	return cmd
}

func newLinkBacklinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backlinks PATH",
		Short: "List every file linking to PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(formatFlag); err != nil {
				return err
			}
			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				neighbors, err := ops.NewLinkOps(db).Backlinks(ctx, args[0])
				if err != nil {
					return err
				}
				return renderLinkNeighbors(cmd, neighbors)
			})
		},
	}
}

func renderLinkNeighbors(cmd *cobra.Command, neighbors []store.LinkNeighbor) error {
	if formatFlag == "json" {
		type neighborEntry struct {
			Path string  `json:"path"`
			Type *string `json:"type,omitempty"`
		}
		out := make([]neighborEntry, 0, len(neighbors))
		for _, n := range neighbors {
			out = append(out, neighborEntry{Path: n.Path, Type: n.Type})
		}
		return outputJSON(cmd, out)
	}

	rows := make([]table.Row, 0, len(neighbors))
	for _, n := range neighbors {
		typ := ""
		if n.Type != nil {
			typ = *n.Type
		}
		rows = append(rows, table.Row{n.Path, typ})
	}
	outputTable(cmd, table.Row{"Path", "Type"}, rows)
	return nil
}

func parseLinkDirection(s string) (store.LinkDirection, error) {
	switch s {
	case "out", "":
		return store.DirectionOut, nil
	case "in":
		return store.DirectionIn, nil
	case "both":
		return store.DirectionBoth, nil
	default:
		return 0, fmt.Errorf("%w: invalid direction %q (valid values: out, in, both)", store.ErrInvalidArgument, s)
	}
}

func typePtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
