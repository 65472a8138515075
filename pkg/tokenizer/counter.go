// Package tokenizer counts tokens the way each provider bills them.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
)

// Encoding names the tokenizer used for a count.
type Encoding string

const (
	O200kBase  Encoding = "o200k_base"
	Cl100kBase Encoding = "cl100k_base"
	Heuristic  Encoding = "heuristic"
)

// o200kFamilies are OpenAI model name prefixes that use o200k_base.
var o200kFamilies = []string{"gpt-4o", "gpt-4.1", "gpt-5", "o1", "o3", "o4"}

// EncodingFor returns the encoding CountTokens uses for a provider and model.
func EncodingFor(provider model.Provider, modelName string) Encoding {
	if provider != model.ProviderOpenAI {
		return Heuristic
	}
	m := strings.ToLower(modelName)
	for _, family := range o200kFamilies {
		if strings.HasPrefix(m, family) {
			return O200kBase
		}
	}
	return Cl100kBase
}

// CountTokens returns the token count for the given text and model.
// OpenAI models are counted with tiktoken; other providers use a
// four-characters-per-token estimate.
func CountTokens(text string, provider model.Provider, modelName string) (int64, error) {
	switch enc := EncodingFor(provider, modelName); enc {
	case O200kBase:
		return countTiktoken(text, tokenizer.O200kBase, enc)
	case Cl100kBase:
		return countTiktoken(text, tokenizer.Cl100kBase, enc)
	default:
		return estimateTokens(text), nil
	}
}

func countTiktoken(text string, name tokenizer.Encoding, enc Encoding) (int64, error) {
	codec, err := tokenizer.Get(name)
	if err != nil {
		return 0, fmt.Errorf("load encoding %s: %w", enc, err)
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode text: %w", err)
	}
	return int64(len(ids)), nil
}

// estimateTokens is ceil(len/4) over the trimmed text.
func estimateTokens(text string) int64 {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0
	}
	return int64((len(text) + 3) / 4)
}
