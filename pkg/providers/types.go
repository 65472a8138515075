package providers

// ModelPricing contains per-model prices in USD per million tokens.
type ModelPricing struct {
	Model                string  `yaml:"model" json:"model"`
	InputPerMillion      float64 `yaml:"input_per_million" json:"input_per_million"`
	OutputPerMillion     float64 `yaml:"output_per_million" json:"output_per_million"`
	CacheWritePerMillion float64 `yaml:"cache_write_per_million,omitempty" json:"cache_write_per_million,omitempty"`
	CacheReadPerMillion  float64 `yaml:"cache_read_per_million,omitempty" json:"cache_read_per_million,omitempty"`
}

// HasCachePricing reports whether the model publishes both cache prices.
func (m ModelPricing) HasCachePricing() bool {
	return m.CacheWritePerMillion > 0 && m.CacheReadPerMillion > 0
}

// ProviderConfig holds YAML-loaded pricing data for a provider.
type ProviderConfig struct {
	Provider string         `yaml:"provider"`
	Updated  string         `yaml:"updated"`
	Models   []ModelPricing `yaml:"models"`
}

// Provider is a named pricing catalog.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Updated returns the date stamp of the prices.
	Updated() string

	// Models returns all known models with pricing, in file order.
	Models() []ModelPricing
}
