package providers_test

import (
	"testing"

	"github.com/ogulcanaydogan/tokalator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T) *providers.Catalog {
	t.Helper()
	return providers.NewCatalog(&providers.ProviderConfig{
		Provider: "openai",
		Updated:  "2026-02-01",
		Models: []providers.ModelPricing{
			{Model: "gpt-4.1", InputPerMillion: 2.00, OutputPerMillion: 8.00, CacheWritePerMillion: 2.00, CacheReadPerMillion: 0.50},
			{Model: "gpt-4o", InputPerMillion: 2.50, OutputPerMillion: 10.00},
			{Model: "gpt-4o-mini", InputPerMillion: 0.15, OutputPerMillion: 0.60},
		},
	})
}

func newTestAnthropic(t *testing.T) *providers.Catalog {
	t.Helper()
	return providers.NewCatalog(&providers.ProviderConfig{
		Provider: "anthropic",
		Updated:  "2026-02-01",
		Models: []providers.ModelPricing{
			{Model: "claude-sonnet-4.5", InputPerMillion: 3.00, OutputPerMillion: 15.00, CacheWritePerMillion: 3.75, CacheReadPerMillion: 0.30},
			{Model: "claude-sonnet-4", InputPerMillion: 3.00, OutputPerMillion: 15.00},
			{Model: "claude-3-opus", InputPerMillion: 15.00, OutputPerMillion: 75.00},
		},
	})
}

func TestCatalog_NameAndUpdated(t *testing.T) {
	p := newTestOpenAI(t)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "2026-02-01", p.Updated())
}

func TestCatalog_ModelsKeepFileOrder(t *testing.T) {
	models := newTestOpenAI(t).Models()
	require.Len(t, models, 3)
	assert.Equal(t, "gpt-4.1", models[0].Model)
	assert.Equal(t, "gpt-4o-mini", models[2].Model)
}
