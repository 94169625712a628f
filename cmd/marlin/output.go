package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// outputJSON encodes v with two-space indentation, matching the teacher's
// outputJSON convention.
func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputTable renders rows under header using go-pretty's light style.
// Column content here is short (names, paths, timestamps), so unlike the
// teacher's entry listing there's no need for terminal-width-aware
// wrapping or truncation.
func outputTable(cmd *cobra.Command, header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	for _, row := range rows {
		t.AppendRow(row)
	}
	t.Render()
}

func validateFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}
