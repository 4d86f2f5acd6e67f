// internal/protocol/device_transport.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"go.uber.org/zap"

	"label-service/internal/model"
	"label-service/internal/raster"
)

// DeviceOpener opens a printer device file with the given os.OpenFile flags
type DeviceOpener func(path string, flag int) (io.ReadWriteCloser, error)

func openDeviceFile(path string, flag int) (io.ReadWriteCloser, error) {
	return os.OpenFile(path, flag, 0)
}

// DeviceTransport writes raster jobs to a local device file such as /dev/usb/lp0
type DeviceTransport struct {
	path     string
	attempts int
	open     DeviceOpener
	logger   *zap.Logger
}

// NewDeviceTransport creates a transport for a file:// URI
func NewDeviceTransport(uri *url.URL, opts Options, logger *zap.Logger) (*DeviceTransport, error) {
	if uri.Path == "" {
		return nil, fmt.Errorf("device path is required in %q", uri.String())
	}

	settings, err := parseSerialSettings(uri.Query())
	if err != nil {
		return nil, err
	}

	open := opts.OpenDevice
	switch {
	case open != nil:
	case settings != nil:
		open = serialOpener(settings)
	default:
		open = openDeviceFile
	}

	attempts := opts.StatusAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &DeviceTransport{
		path:     uri.Path,
		attempts: attempts,
		open:     open,
		logger: logger.With(
			zap.String("transport", "device"),
			zap.String("path", uri.Path),
			zap.Bool("serial", settings != nil),
		),
	}, nil
}

// Path returns the device path
func (dt *DeviceTransport) Path() string {
	return dt.path
}

// Send opens the device, writes the whole job and closes it
func (dt *DeviceTransport) Send(ctx context.Context, job []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	f, err := dt.open(dt.path, os.O_WRONLY)
	if err != nil {
		dt.logger.Error("Failed to open device", zap.Error(err))
		return fmt.Errorf("%w: failed to open device %s: %v", ErrTransmission, dt.path, err)
	}

	n, err := f.Write(job)
	closeErr := f.Close()
	if err != nil {
		dt.logger.Error("Device write failed", zap.Error(err))
		return fmt.Errorf("%w: failed to write to device %s: %v", ErrTransmission, dt.path, err)
	}
	if n != len(job) {
		return fmt.Errorf("%w: incomplete write: wrote %d of %d bytes", ErrTransmission, n, len(job))
	}
	if closeErr != nil {
		return fmt.Errorf("%w: failed to close device %s: %v", ErrTransmission, dt.path, closeErr)
	}

	dt.logger.Debug("Device write completed", zap.Int("bytes", len(job)))
	return nil
}

// QueryStatus asks the printer for a status reply, retrying short reads.
// It returns a nil status when every attempt came back short.
func (dt *DeviceTransport) QueryStatus(ctx context.Context) (*model.PrinterStatus, error) {
	reply := make([]byte, raster.StatusLength)

	for attempt := 1; attempt <= dt.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, err := dt.requestStatus(reply)
		if err != nil {
			return nil, err
		}

		if n == raster.StatusLength {
			return dt.parseStatus(reply), nil
		}

		dt.logger.Debug("Short status reply",
			zap.Int("attempt", attempt),
			zap.Int("bytes", n),
		)
	}

	dt.logger.Warn("Printer did not answer status request", zap.Int("attempts", dt.attempts))
	return nil, nil
}

// requestStatus runs a single status exchange and returns the reply length
func (dt *DeviceTransport) requestStatus(reply []byte) (int, error) {
	f, err := dt.open(dt.path, os.O_RDWR)
	if err != nil {
		return 0, fmt.Errorf("failed to open device %s: %w", dt.path, err)
	}
	defer f.Close()

	if _, err := f.Write(raster.StatusQuery()); err != nil {
		return 0, fmt.Errorf("failed to write status request to %s: %w", dt.path, err)
	}

	n, err := readReply(f, reply)
	if err != nil {
		dt.logger.Debug("Status read failed", zap.Error(err))
	}
	return n, nil
}

// parseStatus extracts the media width from a complete status reply
func (dt *DeviceTransport) parseStatus(reply []byte) *model.PrinterStatus {
	status := &model.PrinterStatus{Ready: true}

	mm := int(reply[raster.StatusMediaWidthOffset])
	if mm == 0 {
		return status
	}

	if tape, ok := model.TapeFromMillimeters(mm); ok {
		status.Media = tape
	} else {
		dt.logger.Warn("Unsupported media width", zap.Int("mm", mm))
	}

	return status
}

// Scheme returns the URI scheme
func (dt *DeviceTransport) Scheme() string {
	return SchemeFile
}

// Close is a no-op, the device is opened per operation
func (dt *DeviceTransport) Close() error {
	return nil
}

// readReply fills buf until it is full, the reader reports EOF or a read
// returns no data (a serial read timeout).
func readReply(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}
