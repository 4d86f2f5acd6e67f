// pkg/driver/interfaces.go
package driver

import (
	"context"

	"label-service/internal/model"
	"label-service/internal/raster"
)

// Printer is the interface every label printer driver implements
type Printer interface {
	// ID returns the configured printer identifier
	ID() string

	// Print encodes a 128 px tall bitmap and sends it as one raster job
	Print(ctx context.Context, img *raster.Bitmap) error

	// PrintRaw sends an already encoded raster job unchanged
	PrintRaw(ctx context.Context, job []byte) error

	// Status reports media and readiness. A nil status with a nil error
	// means the printer did not answer.
	Status(ctx context.Context) (*model.PrinterStatus, error)

	// Close releases the underlying transport
	Close() error
}
