package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/pkg/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List priced models",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	addJSONFlag(modelsCmd)
	modelsCmd.Flags().StringP("provider", "p", "", "Only list this provider's models")
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := initRegistry(cfg)
	if err != nil {
		return err
	}

	catalogs := registry.All()
	if name, _ := cmd.Flags().GetString("provider"); name != "" {
		p, err := registry.Get(name)
		if err != nil {
			return err
		}
		catalogs = []providers.Provider{p}
	}
	table := providers.NewTable(catalogs...)
	entries := table.Models()

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, map[string]any{"models": entries, "updated": table.Updated()})
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No models priced. Check pricing.dir in config.")
		return nil
	}

	for _, p := range catalogs {
		fmt.Fprintf(out, "%s prices as of %s\n", p.Name(), p.Updated())
	}
	fmt.Fprintln(out)

	t := newTable(out)
	t.Header([]string{"Provider", "Model", "Input ($/1M)", "Output ($/1M)", "Cache Write ($/1M)", "Cache Read ($/1M)"})
	for _, e := range entries {
		write, read := "-", "-"
		if e.HasCachePricing() {
			write = fmt.Sprintf("$%.2f", e.CacheWritePerMillion)
			read = fmt.Sprintf("$%.2f", e.CacheReadPerMillion)
		}
		if err := t.Append([]string{
			e.Provider, e.Model,
			fmt.Sprintf("$%.2f", e.InputPerMillion),
			fmt.Sprintf("$%.2f", e.OutputPerMillion),
			write, read,
		}); err != nil {
			return err
		}
	}
	return t.Render()
}
