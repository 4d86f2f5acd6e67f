// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"

	"label-service/internal/model"
)

// URI schemes understood by Resolve
const (
	SchemeTCP   = "tcp"
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

var (
	// ErrUnsupportedScheme is returned when a printer URI names an unknown transport
	ErrUnsupportedScheme = errors.New("unsupported printer URI scheme")

	// ErrTransmission is returned when a raster job could not be delivered
	ErrTransmission = errors.New("raster job transmission failed")
)

// Transport delivers encoded raster jobs to a printer and queries its status
type Transport interface {
	// Send delivers one complete raster job
	Send(ctx context.Context, job []byte) error

	// QueryStatus reports media and readiness. A nil status with a nil
	// error means the printer did not answer.
	QueryStatus(ctx context.Context) (*model.PrinterStatus, error)

	// Scheme returns the URI scheme the transport was resolved from
	Scheme() string

	// Close releases resources held for the lifetime of the transport
	Close() error
}
