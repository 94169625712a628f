package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marlin-md/marlin/internal/query"
	"github.com/marlin-md/marlin/internal/store"
)

func newSearchCmd() *cobra.Command {
	var execTemplate string

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Print paths matching QUERY, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(false, func(ctx context.Context, db *store.Context, _ *zap.Logger) error {
				paths, err := query.Search(ctx, db, args[0])
				if err != nil {
					return err
				}

				if execTemplate == "" {
					for _, p := range paths {
						fmt.Fprintln(cmd.OutOrStdout(), p)
					}
					return nil
				}
				return runExecTemplate(cmd, execTemplate, paths)
			})
		},
	}

	cmd.Flags().StringVar(&execTemplate, "exec", "", "for each hit, run this shell template with {} substituted by the path")
	return cmd
}

// runExecTemplate streams one subprocess per hit without waiting for a
// previous hit's subprocess to finish (§4.4), then, once every hit has
// been launched and every subprocess has exited, exits the process with
// the first nonzero status in hit order.
func runExecTemplate(cmd *cobra.Command, tmpl string, paths []string) error {
	codes := make([]int, len(paths))
	var wg sync.WaitGroup

	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			line := strings.ReplaceAll(tmpl, "{}", shellQuote(p))
			sub := exec.Command("sh", "-c", line)
			sub.Stdin = cmd.InOrStdin()
			sub.Stdout = cmd.OutOrStdout()
			sub.Stderr = cmd.ErrOrStderr()

			if err := sub.Run(); err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					codes[i] = exitErr.ExitCode()
				} else {
					codes[i] = 1
				}
			}
		}(i, p)
	}
	wg.Wait()

	for _, code := range codes {
		if code != 0 {
			os.Exit(code)
		}
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
