package providers

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed pricing/*.yaml
var embeddedPricing embed.FS

// DefaultProviders is the registration order of the bundled pricing files.
var DefaultProviders = []string{"anthropic", "openai", "google"}

// LoadPricing reads a YAML pricing file and returns the provider configuration.
func LoadPricing(path string) (*ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file %s: %w", path, err)
	}

	cfg, err := LoadPricingFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("pricing file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadPricingFromBytes parses and validates YAML pricing data from raw bytes.
func LoadPricingFromBytes(data []byte) (*ProviderConfig, error) {
	var cfg ProviderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pricing data: %w", err)
	}

	if cfg.Provider == "" {
		return nil, errors.New("missing provider name")
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("no models defined")
	}
	for _, m := range cfg.Models {
		if m.Model == "" {
			return nil, errors.New("model entry without a name")
		}
		if m.InputPerMillion < 0 || m.OutputPerMillion < 0 || m.CacheWritePerMillion < 0 || m.CacheReadPerMillion < 0 {
			return nil, fmt.Errorf("model %q: negative price", m.Model)
		}
	}

	return &cfg, nil
}

// LoadEmbedded returns the bundled pricing for a provider.
func LoadEmbedded(provider string) (*ProviderConfig, error) {
	data, err := fs.ReadFile(embeddedPricing, "pricing/"+provider+".yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded pricing %s: %w", provider, err)
	}
	cfg, err := LoadPricingFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("embedded pricing %s: %w", provider, err)
	}
	return cfg, nil
}

// NewDefaultRegistry builds a registry from the bundled pricing files.
// When dir is non-empty, a <provider>.yaml file found there replaces the
// bundled one for that provider.
func NewDefaultRegistry(dir string) (*Registry, error) {
	registry := NewRegistry()

	for _, name := range DefaultProviders {
		cfg, err := loadProvider(dir, name)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(NewCatalog(cfg)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func loadProvider(dir, name string) (*ProviderConfig, error) {
	if dir != "" {
		path := filepath.Join(dir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			return LoadPricing(path)
		}
	}
	return LoadEmbedded(name)
}
