package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarize saved usage imports",
	Long:  `Summarize usage saved with "parse --save" by provider, model, import and period.`,
	RunE:  runHistory,
}

var historyImportsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List saved imports, newest first",
	RunE:  runHistoryImports,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyImportsCmd)

	historyCmd.Flags().StringP("period", "P", "all", "Report period (daily, weekly, monthly, all)")
	historyCmd.Flags().String("import", "", "Only include one import")
	historyCmd.Flags().StringP("provider", "p", "", "Filter by provider")
	historyCmd.Flags().StringP("model", "m", "", "Filter by model")
	historyCmd.Flags().String("project", "", "Filter by project")
	historyCmd.Flags().Bool("detailed", false, "Show individual records")
	historyCmd.Flags().Int("limit", 0, "Maximum records shown with --detailed (0 for all)")
	addJSONFlag(historyCmd)

	historyImportsCmd.Flags().Int("limit", 20, "Maximum imports to list")
	addJSONFlag(historyImportsCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	periodName, _ := f.GetString("period")
	period, err := model.ParsePeriod(periodName)
	if err != nil {
		return err
	}

	var filter model.ReportFilter
	filter.ImportID, _ = f.GetString("import")
	filter.Provider, _ = f.GetString("provider")
	filter.Model, _ = f.GetString("model")
	filter.Project, _ = f.GetString("project")
	filter.Limit, _ = f.GetInt("limit")
	detailed, _ := f.GetBool("detailed")

	t, err := initTracker(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer t.Close()

	summary, err := t.ReportPeriod(cmd.Context(), period, filter)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	var records []model.UsageRecord
	if detailed {
		records, err = t.QueryPeriod(cmd.Context(), period, filter)
		if err != nil {
			return fmt.Errorf("query records: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		if detailed {
			return printJSON(out, map[string]any{"summary": summary, "records": records})
		}
		return printJSON(out, summary)
	}

	fmt.Fprintf(out, "=== Usage History (%s) ===\n", period)
	if err := keyValueTable(out, [][]string{
		{"Total cost", usd(summary.TotalCost)},
		{"Input tokens", intStr(summary.TotalInputTokens)},
		{"Output tokens", intStr(summary.TotalOutputTokens)},
		{"Cache write tokens", intStr(summary.TotalCacheWriteTokens)},
		{"Cache read tokens", intStr(summary.TotalCacheReadTokens)},
		{"Records", intStr(summary.RecordCount)},
	}); err != nil {
		return err
	}

	for _, group := range []struct {
		label string
		costs map[string]float64
	}{
		{"Provider", summary.ByProvider},
		{"Model", summary.ByModel},
	} {
		if len(group.costs) == 0 {
			continue
		}
		fmt.Fprintln(out)
		table := newTable(out)
		table.Header([]string{group.label, "Cost"})
		for _, name := range slices.Sorted(maps.Keys(group.costs)) {
			if err := table.Append([]string{name, usd(group.costs[name])}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(records) > 0 {
		fmt.Fprintln(out)
		costs := lo.Map(records, func(r model.UsageRecord, _ int) float64 { return r.Cost })
		return renderRecords(cmd, records, model.SumRounded(costs, 4))
	}
	return nil
}

func runHistoryImports(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	t, err := initTracker(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer t.Close()

	imports, err := t.Imports(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list imports: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, imports)
	}
	if len(imports) == 0 {
		fmt.Fprintln(out, `No imports saved yet. Use "tokalator parse --save".`)
		return nil
	}

	table := newTable(out)
	table.Header([]string{"ID", "Imported", "File", "Provider", "Records", "Cost"})
	for _, imp := range imports {
		if err := table.Append([]string{
			imp.ID,
			imp.CreatedAt.Local().Format("2006-01-02 15:04"),
			imp.Filename,
			string(imp.Provider),
			intStr(imp.TotalRecords),
			usd(imp.TotalCost),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
