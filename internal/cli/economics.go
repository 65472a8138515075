package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/pkg/economics"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score a request shape with the Cobb-Douglas quality function",
	RunE:  runQuality,
}

var breakevenCmd = &cobra.Command{
	Use:   "breakeven",
	Short: "Find how many reuses make prompt caching pay off",
	RunE:  runBreakeven,
}

var cachingCmd = &cobra.Command{
	Use:   "caching",
	Short: "Compare the cost of caching a prompt against resending it",
	RunE:  runCaching,
}

func init() {
	rootCmd.AddCommand(qualityCmd, breakevenCmd, cachingCmd)

	q := economics.DefaultQualityRequest()
	qualityCmd.Flags().Int64("input-tokens", q.InputTokens, "Input tokens per call")
	qualityCmd.Flags().Int64("output-tokens", q.OutputTokens, "Output tokens per call")
	qualityCmd.Flags().Int64("cache-tokens", q.CacheTokens, "Cached tokens per call")
	qualityCmd.Flags().Float64("alpha", q.Alpha, "Input elasticity (0.05-0.60)")
	qualityCmd.Flags().Float64("beta", q.Beta, "Output elasticity (0.05-0.60)")
	qualityCmd.Flags().Float64("gamma", q.Gamma, "Cache elasticity (0.05-0.50)")
	qualityCmd.Flags().Float64("base-quality", q.BaseQuality, "Quality floor added to cache tokens (0.1-2.0)")
	qualityCmd.Flags().StringP("model", "m", "", "Model used to price cost per quality point")
	addJSONFlag(qualityCmd)

	b := economics.DefaultBreakevenRequest()
	breakevenCmd.Flags().StringP("model", "m", b.ModelID, "Model whose cache prices are used")
	breakevenCmd.Flags().Int64("input-tokens", b.InputTokens, "Uncached input tokens per call")
	breakevenCmd.Flags().Int64("output-tokens", b.OutputTokens, "Output tokens per call")
	breakevenCmd.Flags().Int64("cache-tokens", b.CacheTokens, "Cacheable prompt tokens per call")
	breakevenCmd.Flags().Int64("max-reuses", b.MaxReuses, "Length of the cost curve (1-100)")
	breakevenCmd.Flags().Bool("curve", false, "Print the cost curve")
	addJSONFlag(breakevenCmd)

	c := economics.DefaultCachingRequest()
	cachingCmd.Flags().StringP("model", "m", c.ModelID, "Model whose cache prices are used")
	cachingCmd.Flags().Int64("cache-tokens", c.CacheTokens, "Tokens in the cached prefix")
	cachingCmd.Flags().Int64("reuses", c.ReuseCount, "Planned reuses of the cached prefix (0-1000)")
	addJSONFlag(cachingCmd)
}

func newCalculator() (*economics.Calculator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	table, err := initTable(cfg)
	if err != nil {
		return nil, err
	}
	return economics.NewCalculator(table), nil
}

func runQuality(cmd *cobra.Command, _ []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var req economics.QualityRequest
	req.InputTokens, _ = f.GetInt64("input-tokens")
	req.OutputTokens, _ = f.GetInt64("output-tokens")
	req.CacheTokens, _ = f.GetInt64("cache-tokens")
	req.Alpha, _ = f.GetFloat64("alpha")
	req.Beta, _ = f.GetFloat64("beta")
	req.Gamma, _ = f.GetFloat64("gamma")
	req.BaseQuality, _ = f.GetFloat64("base-quality")
	req.ModelID, _ = f.GetString("model")

	res, err := calc.Quality(req)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), res)
	}
	rows := [][]string{
		{"Quality score", ftoa(res.QualityScore)},
		{"Input contribution", ftoa(res.InputContribution)},
		{"Output contribution", ftoa(res.OutputContribution)},
		{"Cache contribution", ftoa(res.CacheContribution)},
	}
	if req.ModelID != "" {
		rows = append(rows, []string{"Cost per quality point", usd6(res.CostPerQuality)})
	}
	return keyValueTable(cmd.OutOrStdout(), rows)
}

func runBreakeven(cmd *cobra.Command, _ []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var req economics.BreakevenRequest
	req.ModelID, _ = f.GetString("model")
	req.InputTokens, _ = f.GetInt64("input-tokens")
	req.OutputTokens, _ = f.GetInt64("output-tokens")
	req.CacheTokens, _ = f.GetInt64("cache-tokens")
	req.MaxReuses, _ = f.GetInt64("max-reuses")

	res, err := calc.Breakeven(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, res)
	}

	threshold := "never"
	if !res.Threshold.Infinite() {
		threshold = ftoa(float64(res.Threshold))
	}
	if err := keyValueTable(out, [][]string{
		{"Break-even reuses", threshold},
		{"Breaks even", strconv.FormatBool(res.BreaksEven)},
		{"Savings at 10 reuses", usd(res.SavingsAt10)},
		{"ROI at 10 reuses", ftoa(res.ROIAt10) + "%"},
	}); err != nil {
		return err
	}

	if showCurve, _ := f.GetBool("curve"); !showCurve {
		return nil
	}
	fmt.Fprintln(out)
	table := newTable(out)
	table.Header([]string{"Reuses", "No Cache", "With Cache"})
	for _, p := range res.Curve {
		if err := table.Append([]string{intStr(p.Reuses), usd(p.CostNoCache), usd(p.CostWithCache)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func runCaching(cmd *cobra.Command, _ []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var req economics.CachingRequest
	req.ModelID, _ = f.GetString("model")
	req.CacheTokens, _ = f.GetInt64("cache-tokens")
	req.ReuseCount, _ = f.GetInt64("reuses")

	res, err := calc.Caching(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, res)
	}

	breakEven := "never"
	if res.BreakEvenReuses != nil {
		breakEven = intStr(*res.BreakEvenReuses)
	}
	if err := keyValueTable(out, [][]string{
		{"Cache write", usd(res.CacheWriteCost)},
		{"Cache read", usd(res.CacheReadCost)},
		{"Uncached input", usd(res.InputCost)},
		{"Savings per reuse", usd(res.SavingsPerReuse)},
		{"Break-even reuses", breakEven},
		{"Total with cache", usd(res.TotalWithCache)},
		{"Total without cache", usd(res.TotalWithout)},
		{"Net savings", usd(res.NetSavings)},
		{"Savings", ftoa(res.SavingsPercent) + "%"},
	}); err != nil {
		return err
	}
	fmt.Fprintln(out, res.Recommendation)
	return nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
