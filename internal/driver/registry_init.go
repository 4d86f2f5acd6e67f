// internal/driver/registry_init.go
package driver

import (
	"fmt"

	"go.uber.org/zap"

	"label-service/internal/config"
	"label-service/internal/protocol"
)

// NewRegistryFromConfig builds transport options and a registry from the
// application configuration
func NewRegistryFromConfig(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	opts, err := protocol.OptionsFromConfig(&cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("invalid transport configuration: %w", err)
	}

	registry := NewRegistry(cfg.Printers, opts, logger)

	for _, p := range cfg.Printers {
		logger.Info("Printer configured",
			zap.String("printer_id", p.Name),
			zap.String("uri", p.URI),
		)
	}

	logger.Info("Printer registry initialized",
		zap.Int("printers", len(cfg.Printers)),
	)
	return registry, nil
}
