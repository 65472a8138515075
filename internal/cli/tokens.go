package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/pkg/tokenizer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [text|-]",
	Short: "Count the tokens in a prompt and price them as input",
	Long: `Count tokens the way the model's provider bills them. OpenAI models use
tiktoken; Anthropic and Google models use a four-characters-per-token
estimate. Pass "-" or no argument to read the text from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	addJSONFlag(tokensCmd)
	tokensCmd.Flags().StringP("model", "m", tokenizer.DefaultModel, "Model to count and price for")
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := tokensInput(cmd, args)
	if err != nil {
		return err
	}

	table, err := initTable(cfg)
	if err != nil {
		return err
	}

	modelName, _ := cmd.Flags().GetString("model")
	est, err := tokenizer.NewEstimator(table).Estimate(text, modelName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, est)
	}
	return keyValueTable(out, [][]string{
		{"Model", est.Model},
		{"Provider", string(est.Provider)},
		{"Tokenizer", string(est.Tokenizer)},
		{"Tokens", intStr(est.Tokens)},
		{"Input cost", usd6(est.InputCost)},
	})
}

func tokensInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
