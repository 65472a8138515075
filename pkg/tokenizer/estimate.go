package tokenizer

import (
	"fmt"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
)

// DefaultModel is counted against when no model is named.
const DefaultModel = "claude-sonnet-4.5"

// Estimate is a token count priced as model input.
type Estimate struct {
	Tokens    int64          `json:"tokens"`
	Tokenizer Encoding       `json:"tokenizer"`
	Provider  model.Provider `json:"provider"`
	Model     string         `json:"model"`
	InputCost float64        `json:"input_cost"`
}

// Estimator counts prompt text and prices it through a pricing table.
type Estimator struct {
	table *providers.Table
}

// NewEstimator creates an estimator over the given price table.
func NewEstimator(table *providers.Table) *Estimator {
	return &Estimator{table: table}
}

// Estimate counts text for modelName and prices the count as input tokens.
// The provider comes from the model name, then from the pricing table, and
// falls back to anthropic.
func (e *Estimator) Estimate(text, modelName string) (*Estimate, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	provider := e.providerFor(modelName)

	tokens, err := CountTokens(text, provider, modelName)
	if err != nil {
		return nil, fmt.Errorf("count tokens for %s: %w", modelName, err)
	}

	return &Estimate{
		Tokens:    tokens,
		Tokenizer: EncodingFor(provider, modelName),
		Provider:  provider,
		Model:     modelName,
		InputCost: model.Round(e.table.EstimateCost(modelName, tokens, 0), 6),
	}, nil
}

func (e *Estimator) providerFor(modelName string) model.Provider {
	if p, ok := model.InferProvider(modelName); ok {
		return p
	}
	if entry, kind := e.table.Lookup(modelName); kind != providers.MatchDefault {
		if p, err := model.ParseProvider(entry.Provider); err == nil {
			return p
		}
	}
	return model.ProviderAnthropic
}
