package logging

import (
	"fmt"

	"folio-api/internal/config"
	"folio-api/internal/logging/adapters"
)

// Manager owns the configured logger for the process
type Manager struct {
	factory *AdapterFactory
	logger  *MultiLogger
}

// NewManager creates an uninitialized logging manager
func NewManager() *Manager {
	return &Manager{
		factory: NewAdapterFactory(),
		logger:  NewMultiLogger(),
	}
}

// Initialize builds the adapter set from configuration. With no adapters
// configured it falls back to a single stdout adapter.
func (m *Manager) Initialize(cfg *config.Config) error {
	m.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))

	if len(cfg.Logging.Adapters) == 0 {
		m.logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{
			Format: cfg.Logging.Format,
		}))
		return nil
	}

	for _, ac := range cfg.Logging.Adapters {
		if !ac.Enabled {
			continue
		}

		adapter, err := m.factory.CreateAdapter(AdapterConfig{
			Name:    ac.Name,
			Type:    ac.Type,
			Enabled: ac.Enabled,
			Options: ac.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", ac.Name, err)
		}
		m.logger.AddAdapter(adapter)
	}

	return nil
}

// GetLogger returns the configured logger
func (m *Manager) GetLogger() Logger {
	return m.logger
}

// Close flushes and closes all adapters
func (m *Manager) Close() error {
	if m.logger != nil {
		return m.logger.Close()
	}
	return nil
}

var globalManager *Manager

// InitializeLogging sets up the process-wide logger from configuration
func InitializeLogging(cfg *config.Config) error {
	globalManager = NewManager()
	return globalManager.Initialize(cfg)
}

// GetGlobalLogger returns the process-wide logger. Before InitializeLogging
// runs (or in tests) it lazily creates a JSON stdout logger.
func GetGlobalLogger() Logger {
	if globalManager == nil {
		manager := NewManager()
		manager.logger.AddAdapter(adapters.NewStdoutAdapter("fallback_stdout", adapters.StdoutConfig{
			Format: "json",
		}))
		globalManager = manager
	}
	return globalManager.GetLogger()
}

// CloseLogging closes the process-wide logger
func CloseLogging() error {
	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}
