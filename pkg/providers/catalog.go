package providers

// Catalog implements Provider from a loaded pricing file.
type Catalog struct {
	config *ProviderConfig
}

// NewCatalog creates a provider catalog from a pricing config.
func NewCatalog(cfg *ProviderConfig) *Catalog {
	return &Catalog{config: cfg}
}

func (c *Catalog) Name() string { return c.config.Provider }

func (c *Catalog) Updated() string { return c.config.Updated }

func (c *Catalog) Models() []ModelPricing {
	return c.config.Models
}
