// internal/protocol/factory.go
package protocol

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"label-service/internal/config"
)

// Options carries transport settings resolved from configuration
type Options struct {
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	HTTPTimeout    time.Duration
	StatusAttempts int
	SNMP           SNMPOptions

	// Optional overrides, mainly for tests
	HTTPClient    *http.Client
	NewSNMPClient SNMPClientFactory
	OpenDevice    DeviceOpener
}

// DefaultOptions returns the settings used when no configuration is supplied
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 10 * time.Second,
		WriteTimeout:   30 * time.Second,
		HTTPTimeout:    30 * time.Second,
		StatusAttempts: 3,
		SNMP: SNMPOptions{
			Community: "public",
			Version:   gosnmp.Version2c,
			Port:      161,
			Timeout:   5 * time.Second,
			Retries:   1,
		},
	}
}

// OptionsFromConfig converts transport configuration into Options
func OptionsFromConfig(cfg *config.TransportConfig) (Options, error) {
	opts := DefaultOptions()

	if cfg.ConnectTimeout > 0 {
		opts.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.HTTPTimeout > 0 {
		opts.HTTPTimeout = cfg.HTTPTimeout
	}
	if cfg.StatusAttempts > 0 {
		opts.StatusAttempts = cfg.StatusAttempts
	}

	if cfg.SNMP.Community != "" {
		opts.SNMP.Community = cfg.SNMP.Community
	}
	if cfg.SNMP.Version != "" {
		version, err := ParseSNMPVersion(cfg.SNMP.Version)
		if err != nil {
			return opts, err
		}
		opts.SNMP.Version = version
	}
	if cfg.SNMP.Port != 0 {
		opts.SNMP.Port = cfg.SNMP.Port
	}
	if cfg.SNMP.Timeout > 0 {
		opts.SNMP.Timeout = cfg.SNMP.Timeout
	}
	if cfg.SNMP.Retries > 0 {
		opts.SNMP.Retries = cfg.SNMP.Retries
	}

	return opts, nil
}

// Resolve parses a printer URI and builds the matching transport.
// Dispatch happens once here, on the URI scheme.
func Resolve(uri string, opts Options, logger *zap.Logger) (Transport, error) {
	parts, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid printer URI %q: %w", uri, err)
	}

	switch parts.Scheme {
	case SchemeTCP:
		return NewSocketTransport(parts, opts, logger)
	case SchemeFile:
		return NewDeviceTransport(parts, opts, logger)
	case SchemeHTTP, SchemeHTTPS:
		return NewRelayTransport(parts, opts, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parts.Scheme)
	}
}
