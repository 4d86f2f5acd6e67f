// internal/protocol/serial_port.go
package protocol

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"go.bug.st/serial"
)

// SerialSettings configures a device file that is a serial line, such as a
// Bluetooth RFCOMM port. Set through URI query parameters.
type SerialSettings struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      string
	ReadTimeout time.Duration
}

// parseSerialSettings reads baud, data_bits, stop_bits, parity and
// read_timeout from the URI query. It returns nil when no baud rate is set.
func parseSerialSettings(query url.Values) (*SerialSettings, error) {
	baud := query.Get("baud")
	if baud == "" {
		return nil, nil
	}

	settings := &SerialSettings{
		DataBits:    8,
		StopBits:    1,
		Parity:      "none",
		ReadTimeout: 2 * time.Second,
	}

	var err error
	if settings.BaudRate, err = strconv.Atoi(baud); err != nil || settings.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate: %q", baud)
	}

	if v := query.Get("data_bits"); v != "" {
		if settings.DataBits, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid data_bits: %q", v)
		}
	}

	if v := query.Get("stop_bits"); v != "" {
		if settings.StopBits, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid stop_bits: %q", v)
		}
	}

	if v := query.Get("parity"); v != "" {
		settings.Parity = v
	}

	if v := query.Get("read_timeout"); v != "" {
		if settings.ReadTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid read_timeout: %q", v)
		}
	}

	return settings, nil
}

// mode converts the settings to a serial port mode
func (s *SerialSettings) mode() *serial.Mode {
	mode := &serial.Mode{
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
	}

	switch s.StopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}

	switch s.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	return mode
}

// serialOpener returns a DeviceOpener that opens the path as a serial port
func serialOpener(settings *SerialSettings) DeviceOpener {
	return func(path string, flag int) (io.ReadWriteCloser, error) {
		port, err := serial.Open(path, settings.mode())
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port: %w", err)
		}

		if err := port.SetReadTimeout(settings.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to set read timeout: %w", err)
		}

		return port, nil
	}
}
