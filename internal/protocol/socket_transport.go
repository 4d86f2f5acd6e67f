// internal/protocol/socket_transport.go
package protocol

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"label-service/internal/model"
)

// DefaultRasterPort is the raw printing port used when the URI has none
const DefaultRasterPort = 9100

// SocketTransport sends raster jobs over TCP, one connection per job, and
// reads status over SNMP.
type SocketTransport struct {
	host    string
	port    int
	dialer  *net.Dialer
	timeout time.Duration
	logger  *zap.Logger

	// gosnmp sessions are not safe for concurrent use
	snmpMu sync.Mutex
	snmp   SNMPClient
}

// NewSocketTransport creates a transport for a tcp:// URI and opens its SNMP session
func NewSocketTransport(uri *url.URL, opts Options, logger *zap.Logger) (*SocketTransport, error) {
	host := uri.Hostname()
	if host == "" {
		return nil, fmt.Errorf("TCP host is required in %q", uri.String())
	}

	port := DefaultRasterPort
	if p := uri.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 || parsed > 65535 {
			return nil, fmt.Errorf("invalid port number: %s", p)
		}
		port = parsed
	}

	newClient := opts.NewSNMPClient
	if newClient == nil {
		newClient = newGoSNMPClient
	}

	client, err := newClient(host, opts.SNMP)
	if err != nil {
		return nil, err
	}

	return &SocketTransport{
		host: host,
		port: port,
		dialer: &net.Dialer{
			Timeout: opts.ConnectTimeout,
		},
		timeout: opts.WriteTimeout,
		snmp:    client,
		logger: logger.With(
			zap.String("transport", "socket"),
			zap.String("host", host),
			zap.Int("port", port),
		),
	}, nil
}

// Address returns the raster endpoint as host:port
func (st *SocketTransport) Address() string {
	return net.JoinHostPort(st.host, strconv.Itoa(st.port))
}

// Send opens a fresh connection, writes the job and closes the connection
func (st *SocketTransport) Send(ctx context.Context, job []byte) error {
	address := st.Address()

	conn, err := st.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		st.logger.Error("Failed to connect to printer", zap.Error(err))
		return fmt.Errorf("%w: failed to connect to %s: %v", ErrTransmission, address, err)
	}
	defer conn.Close()

	if st.timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(st.timeout))
	}

	n, err := conn.Write(job)
	if err != nil {
		st.logger.Error("TCP write failed", zap.Error(err))
		return fmt.Errorf("%w: failed to write to %s: %v", ErrTransmission, address, err)
	}
	if n != len(job) {
		return fmt.Errorf("%w: incomplete write: wrote %d of %d bytes", ErrTransmission, n, len(job))
	}

	if err := conn.Close(); err != nil {
		return fmt.Errorf("%w: failed to close connection to %s: %v", ErrTransmission, address, err)
	}

	st.logger.Debug("TCP write completed", zap.Int("bytes", len(job)))
	return nil
}

// QueryStatus reads the media descriptor and input status over SNMP
func (st *SocketTransport) QueryStatus(ctx context.Context) (*model.PrinterStatus, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	st.snmpMu.Lock()
	defer st.snmpMu.Unlock()

	if st.snmp == nil {
		return nil, fmt.Errorf("SNMP session closed")
	}

	media, err := getVariable(st.snmp, MediaOID)
	if err != nil {
		return nil, err
	}

	code, err := getVariable(st.snmp, StatusOID)
	if err != nil {
		return nil, err
	}

	descriptor := pduString(media)
	statusCode := gosnmp.ToBigInt(code.Value).Int64()

	status := &model.PrinterStatus{
		Media: model.MatchMediaDescriptor(descriptor),
		Ready: readyStatusCodes[statusCode],
	}

	st.logger.Debug("SNMP status",
		zap.String("descriptor", descriptor),
		zap.Int64("status_code", statusCode),
	)
	return status, nil
}

// Scheme returns the URI scheme
func (st *SocketTransport) Scheme() string {
	return SchemeTCP
}

// Close releases the SNMP session
func (st *SocketTransport) Close() error {
	st.snmpMu.Lock()
	defer st.snmpMu.Unlock()

	if st.snmp == nil {
		return nil
	}

	err := st.snmp.Close()
	st.snmp = nil
	return err
}
