package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/pkg/importer"
	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.csv>",
	Short: "Normalize a provider usage export",
	Long: `Parse an Anthropic, OpenAI or Google usage export into normalized records.
The provider is detected from the headers and model names. Rows without
tokens are skipped and missing costs are estimated from the pricing table.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addJSONFlag(parseCmd)
	parseCmd.Flags().Bool("save", false, "Save the import to the history database")
	parseCmd.Flags().Bool("summary", false, "Only print the totals")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	filename := filepath.Base(path)
	if err := importer.CheckFilename(filename); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	table, err := initTable(cfg)
	if err != nil {
		return err
	}

	result, err := importer.New(table).Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		t, err := initTracker(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer t.Close()

		if _, err := t.Import(cmd.Context(), filename, result); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Provider: %s\n", result.DetectedProvider)
	fmt.Fprintf(out, "Records:  %d\n", result.TotalRecords)
	fmt.Fprintf(out, "Total:    %s\n", usd(result.TotalCost))
	if result.ImportID != "" {
		fmt.Fprintf(out, "Saved as: %s\n", result.ImportID)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "Warning:  %s\n", w)
	}

	if summaryOnly, _ := cmd.Flags().GetBool("summary"); summaryOnly || len(result.Records) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	return renderRecords(cmd, result.Records, result.TotalCost)
}

// renderRecords prints usage records with a cost total footer.
func renderRecords(cmd *cobra.Command, records []model.UsageRecord, total float64) error {
	table := newTable(cmd.OutOrStdout())
	table.Header([]string{"Date", "Provider", "Model", "Input", "Output", "Cache Write", "Cache Read", "Cost"})
	for _, r := range records {
		row := []string{
			r.Date, string(r.Provider), r.Model,
			intStr(r.InputTokens), intStr(r.OutputTokens),
			intStr(r.CacheWriteTokens), intStr(r.CacheReadTokens),
			usd6(r.Cost),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	table.Footer([]string{"", "", "", "", "", "", "Total", usd(total)})
	return table.Render()
}
