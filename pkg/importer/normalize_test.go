package importer

import (
	"testing"

	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeModel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"claude-sonnet-4.5", "claude-sonnet-4.5"},
		{"  Claude-3-5-Sonnet-20241022 ", "claude-sonnet-4.5"},
		{"anthropic.claude-3-5-haiku", "claude-haiku-4.5"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4.5"},
		{"openai.gpt-4o-mini-2024-07-18", "gpt-4o-mini"},
		{"models/gemini-2.5-flash", "gemini-2.5-flash"},
		{"models/openai.gpt-4o", "gpt-4o"},
		{"openai.models/gpt-4o", "models/gpt-4o"},
		{"", model.UnknownModel},
		{"   ", model.UnknownModel},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeModel(tt.raw))
		})
	}
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1234", 1234},
		{" 1,234 ", 1234},
		{"1,234.0", 1234},
		{"99.9", 99},
		{"2e3", 2000},
		{"", 0},
		{"abc", 0},
		{"-50", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e40", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTokens(tt.in))
		})
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.25", 1.25, true},
		{"$1,234.50", 1234.5, true},
		{" 0 ", 0, true},
		{"", 0, false},
		{"$", 0, false},
		{"free", 0, false},
		{"-1", 0, false},
		{"inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseCost(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	const today = "2025-06-15"
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-31", "2025-01-31"},
		{"2025-1-5", "2025-01-05"},
		{"01/31/2025", "2025-01-31"},
		{"3/4/2025", "2025-03-04"},
		{"31/01/2025", "2025-01-31"},
		{"2025-01-31T23:59:59", "2025-01-31"},
		{"2025-01-31T23:59:59.123Z", "2025-01-31"},
		{"2025-01-31 08:00:00", "2025-01-31"},
		{"", today},
		{"yesterday", today},
		{"2025-13-45", today},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDate(tt.in, today))
		})
	}
}

func TestResolveColumns_AliasPriority(t *testing.T) {
	headers := []string{"Timestamp", "Date", "MODEL_ID", "prompt_tokens", "input_tokens", "amount"}

	cols, warnings, err := resolveColumns(headers)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, cols.date, "date outranks timestamp")
	assert.Equal(t, 2, cols.model)
	assert.Equal(t, 4, cols.input, "input_tokens outranks prompt_tokens")
	assert.Equal(t, -1, cols.output)
	assert.Equal(t, 5, cols.cost)
	assert.Equal(t, -1, cols.cacheWrite)
}

func TestResolveColumns_CamelCaseAliases(t *testing.T) {
	cols, _, err := resolveColumns([]string{"inputTokenCount", "outputtokencount"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols.input)
	assert.Equal(t, 1, cols.output)
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		models  []string
		want    model.Provider
	}{
		{"organization header", []string{"Organization", "model"}, []string{"claude-3-opus"}, model.ProviderOpenAI},
		{"snapshot header", []string{"snapshot_id"}, nil, model.ProviderOpenAI},
		{"project_id header", []string{"project_id", "model"}, []string{"gpt-4o"}, model.ProviderGoogle},
		{"vertex header", []string{"vertex_region"}, nil, model.ProviderGoogle},
		{"claude model", []string{"model"}, []string{"claude-haiku-4.5"}, model.ProviderAnthropic},
		{"gpt model", []string{"model"}, []string{"GPT-4o"}, model.ProviderOpenAI},
		{"o-series model", []string{"model"}, []string{"o4-mini"}, model.ProviderOpenAI},
		{"gemini model", []string{"model"}, []string{"gemini-3-pro"}, model.ProviderGoogle},
		{"first deciding row wins", []string{"model"}, []string{"", "llama", "gemini-3-pro", "claude"}, model.ProviderGoogle},
		{"only five rows sampled", []string{"model"}, []string{"a", "b", "c", "d", "e", "gpt-4o"}, model.ProviderAnthropic},
		{"default", []string{"model"}, []string{"mistral"}, model.ProviderAnthropic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectProvider(tt.headers, tt.models))
		})
	}
}

func TestDecode(t *testing.T) {
	text, err := decode([]byte("\xEF\xBB\xBFa,b"))
	require.NoError(t, err)
	assert.Equal(t, "a,b", text)

	text, err = decode([]byte{'n', 0xE4, 'h'})
	require.NoError(t, err)
	assert.Equal(t, "näh", text)
}
