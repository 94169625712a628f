package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/store"
	"github.com/marlin-md/marlin/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch PATHS...",
		Short: "Watch roots and keep the index current until interrupted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(true, func(ctx context.Context, db *store.Context, log *zap.Logger) error {
				w, err := watcher.New(db, args, log, watcher.Options{})
				if err != nil {
					return fmt.Errorf("constructing watcher: %w", err)
				}

				if err := w.Start(ctx); err != nil {
					return fmt.Errorf("starting watcher: %w", err)
				}

				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
				fmt.Fprintln(cmd.OutOrStdout(), "watching, press ctrl-c to stop")
				<-sigCh

				return w.Shutdown(ctx)
			})
		},
	}
}
