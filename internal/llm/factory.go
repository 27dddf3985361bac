package llm

import (
	"fmt"

	"folio-api/internal/config"
	"folio-api/internal/llm/providers"
)

// Factory creates LLM provider instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new LLM factory instance
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: cfg,
	}
}

// CreateProvider creates an LLM provider based on the configuration
func (f *Factory) CreateProvider() (Provider, error) {
	switch f.config.LLM.Provider {
	case "claude":
		return providers.NewClaudeProvider(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q, supported: %v",
			f.config.LLM.Provider, f.SupportedProviders())
	}
}

// SupportedProviders lists the providers CreateProvider accepts
func (f *Factory) SupportedProviders() []string {
	return []string{"claude"}
}
