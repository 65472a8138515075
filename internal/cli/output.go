package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdoutIsTerminal reports whether tables can be shown. Tests replace it.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

// wantJSON is true when --json is set or stdout is piped.
func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON || !stdoutIsTerminal()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})))
}

// keyValueTable renders two-column label/value rows.
func keyValueTable(w io.Writer, rows [][]string) error {
	table := newTable(w)
	table.Header([]string{"Metric", "Value"})
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func usd(v float64) string  { return fmt.Sprintf("$%.4f", v) }
func usd6(v float64) string { return fmt.Sprintf("$%.6f", v) }
func intStr(v int64) string { return fmt.Sprintf("%d", v) }
