// internal/driver/registry.go
package driver

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"label-service/internal/config"
	"label-service/internal/protocol"
	"label-service/pkg/driver"
)

// ErrPrinterNotFound is returned for printer identifiers missing from configuration
var ErrPrinterNotFound = errors.New("printer not found")

// TransportResolver builds a transport from a printer URI
type TransportResolver func(uri string, opts protocol.Options, logger *zap.Logger) (protocol.Transport, error)

// Registry maps printer identifiers to drivers. Drivers are built on first
// use and cached for the life of the registry, with no eviction.
type Registry struct {
	uris    map[string]string
	names   []string
	opts    protocol.Options
	resolve TransportResolver

	drivers map[string]driver.Printer
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewRegistry creates a registry over the configured printers
func NewRegistry(printers []config.PrinterConfig, opts protocol.Options, logger *zap.Logger) *Registry {
	r := &Registry{
		uris:    make(map[string]string, len(printers)),
		names:   make([]string, 0, len(printers)),
		opts:    opts,
		resolve: protocol.Resolve,
		drivers: make(map[string]driver.Printer),
		logger:  logger.With(zap.String("component", "driver_registry")),
	}

	for _, p := range printers {
		if _, exists := r.uris[p.Name]; !exists {
			r.names = append(r.names, p.Name)
		}
		r.uris[p.Name] = p.URI
	}

	return r
}

// Get returns the driver for printerID, resolving its transport on first use
func (r *Registry) Get(printerID string) (driver.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.drivers[printerID]; ok {
		return d, nil
	}

	uri, ok := r.uris[printerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrinterNotFound, printerID)
	}

	transport, err := r.resolve(uri, r.opts, r.logger.With(zap.String("printer_id", printerID)))
	if err != nil {
		r.logger.Error("Failed to resolve printer transport",
			zap.String("printer_id", printerID),
			zap.String("uri", uri),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to resolve printer %s: %w", printerID, err)
	}

	d := NewPrinterDriver(printerID, transport, r.logger)
	r.drivers[printerID] = d

	r.logger.Info("Printer driver created",
		zap.String("printer_id", printerID),
		zap.String("scheme", transport.Scheme()),
	)
	return d, nil
}

// Printers returns the configured printer identifiers in configuration order
func (r *Registry) Printers() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Has reports whether printerID is configured
func (r *Registry) Has(printerID string) bool {
	_, ok := r.uris[printerID]
	return ok
}

// Close closes every cached driver and empties the cache
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, d := range r.drivers {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close printer %s: %w", id, err))
		}
	}
	r.drivers = make(map[string]driver.Printer)

	return errors.Join(errs...)
}
