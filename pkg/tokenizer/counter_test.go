package tokenizer_test

import (
	"testing"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		provider model.Provider
		model    string
		want     tokenizer.Encoding
	}{
		{model.ProviderOpenAI, "gpt-4o", tokenizer.O200kBase},
		{model.ProviderOpenAI, "gpt-4o-mini", tokenizer.O200kBase},
		{model.ProviderOpenAI, "gpt-4.1-nano", tokenizer.O200kBase},
		{model.ProviderOpenAI, "GPT-5.2", tokenizer.O200kBase},
		{model.ProviderOpenAI, "o4-mini", tokenizer.O200kBase},
		{model.ProviderOpenAI, "gpt-4", tokenizer.Cl100kBase},
		{model.ProviderOpenAI, "gpt-3.5-turbo", tokenizer.Cl100kBase},
		{model.ProviderAnthropic, "claude-sonnet-4.5", tokenizer.Heuristic},
		{model.ProviderGoogle, "gemini-2.5-pro", tokenizer.Heuristic},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizer.EncodingFor(tt.provider, tt.model))
		})
	}
}

func TestCountTokens_OpenAI(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		model    string
		minCount int64
		maxCount int64
	}{
		{"short text gpt-4o", "Hello world", "gpt-4o", 1, 5},
		{"medium text gpt-4.1", "The quick brown fox jumps over the lazy dog", "gpt-4.1", 5, 15},
		{"empty text", "", "gpt-4o", 0, 0},
		{"gpt-4", "Hello world", "gpt-4", 1, 5},
		{"unknown openai model falls back", "Hello world", "gpt-99", 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := tokenizer.CountTokens(tt.text, model.ProviderOpenAI, tt.model)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, tt.minCount)
			assert.LessOrEqual(t, count, tt.maxCount)
		})
	}
}

func TestCountTokens_Heuristic(t *testing.T) {
	text := "Hello, this is a test message for token counting."
	for _, p := range []model.Provider{model.ProviderAnthropic, model.ProviderGoogle} {
		count, err := tokenizer.CountTokens(text, p, "any")
		require.NoError(t, err)
		assert.Equal(t, int64((len(text)+3)/4), count)
	}
}

func TestCountTokens_BlankText(t *testing.T) {
	count, err := tokenizer.CountTokens("   ", model.ProviderAnthropic, "claude-sonnet-4.5")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func BenchmarkCountTokens_OpenAI(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog. This is a benchmark test for token counting performance."
	for b.Loop() {
		_, _ = tokenizer.CountTokens(text, model.ProviderOpenAI, "gpt-4o")
	}
}

func BenchmarkCountTokens_Estimation(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog. This is a benchmark test for token counting performance."
	for b.Loop() {
		_, _ = tokenizer.CountTokens(text, model.ProviderAnthropic, "claude-sonnet-4.5")
	}
}
