// internal/driver/driver.go
package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
	"label-service/internal/utils"
)

// PrinterDriver pairs a printer identifier with its transport
type PrinterDriver struct {
	id        string
	transport protocol.Transport
	logger    *utils.PrinterLogger
}

// NewPrinterDriver creates a driver around an already resolved transport
func NewPrinterDriver(id string, transport protocol.Transport, logger *zap.Logger) *PrinterDriver {
	return &PrinterDriver{
		id:        id,
		transport: transport,
		logger:    utils.NewPrinterLogger(logger, id, transport.Scheme()),
	}
}

// ID returns the printer identifier
func (d *PrinterDriver) ID() string {
	return d.id
}

// Transport returns the transport the driver sends through
func (d *PrinterDriver) Transport() protocol.Transport {
	return d.transport
}

// Print encodes the bitmap and sends it
func (d *PrinterDriver) Print(ctx context.Context, img *raster.Bitmap) error {
	job, err := raster.Encode(img)
	if err != nil {
		return fmt.Errorf("failed to encode label for %s: %w", d.id, err)
	}

	return d.PrintRaw(ctx, job)
}

// PrintRaw sends an encoded raster job
func (d *PrinterDriver) PrintRaw(ctx context.Context, job []byte) error {
	start := time.Now()
	err := d.transport.Send(ctx, job)
	d.logger.LogSend(len(job), time.Since(start), err)
	return err
}

// Status queries the transport for printer status
func (d *PrinterDriver) Status(ctx context.Context) (*model.PrinterStatus, error) {
	status, err := d.transport.QueryStatus(ctx)
	switch {
	case err != nil:
		d.logger.LogStatus("", false, false, err)
	case status == nil:
		d.logger.LogStatus("", false, false, nil)
	default:
		d.logger.LogStatus(status.Media.String(), status.Ready, true, nil)
	}
	return status, err
}

// Logger returns the printer scoped logger
func (d *PrinterDriver) Logger() *utils.PrinterLogger {
	return d.logger
}

// Close releases the transport
func (d *PrinterDriver) Close() error {
	return d.transport.Close()
}
