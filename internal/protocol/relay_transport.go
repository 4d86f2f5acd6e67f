// internal/protocol/relay_transport.go
package protocol

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"label-service/internal/model"
)

// Placeholder label fields sent with raw relay jobs. The remote ignores them
// for raw labels, they only satisfy its request schema.
const (
	relayPlaceholderTape = model.Tape6mm
	relayPlaceholderFont = "mono"
)

// RelayTransport forwards raster jobs to another instance of this service
type RelayTransport struct {
	scheme  string
	baseURL string
	printer string
	client  *http.Client
	logger  *zap.Logger
}

// NewRelayTransport creates a transport for an http(s):// URI whose last path
// segment names the printer on the remote service
func NewRelayTransport(uri *url.URL, opts Options, logger *zap.Logger) (*RelayTransport, error) {
	idx := strings.LastIndex(uri.Path, "/")
	if idx < 0 || idx == len(uri.Path)-1 {
		return nil, fmt.Errorf("remote printer id is required in %q", uri.String())
	}

	printer := uri.Path[idx+1:]

	base := *uri
	base.Path = uri.Path[:idx]
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.HTTPTimeout}
	}

	return &RelayTransport{
		scheme:  uri.Scheme,
		baseURL: base.String(),
		printer: printer,
		client:  client,
		logger: logger.With(
			zap.String("transport", "relay"),
			zap.String("base_url", base.String()),
			zap.String("remote_printer", printer),
		),
	}, nil
}

// BaseURL returns the remote service URL
func (rt *RelayTransport) BaseURL() string {
	return rt.baseURL
}

// Printer returns the printer id on the remote service
func (rt *RelayTransport) Printer() string {
	return rt.printer
}

// Send forwards the job as a raw label print request
func (rt *RelayTransport) Send(ctx context.Context, job []byte) error {
	request := model.PrintRequest{
		Count: 1,
		Label: model.LabelRequest{
			LabelType: model.LabelTypeRaw,
			B64Bytes:  base64.StdEncoding.EncodeToString(job),
			Printer:   rt.printer,
			Tape:      relayPlaceholderTape,
			Fontname:  relayPlaceholderFont,
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rt.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rt.client.Do(req)
	if err != nil {
		rt.logger.Error("Relay print request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rt.logger.Error("Relay rejected print request", zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("%w: remote returned %s", ErrTransmission, resp.Status)
	}

	rt.logger.Debug("Relay print completed", zap.Int("bytes", len(job)))
	return nil
}

// QueryStatus fetches the remote status map. Failures are logged and reported
// as the conservative default status, never returned as errors.
func (rt *RelayTransport) QueryStatus(ctx context.Context) (*model.PrinterStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rt.baseURL+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay status request: %w", err)
	}

	resp, err := rt.client.Do(req)
	if err != nil {
		rt.logger.Error("Error getting relay status", zap.Error(err))
		return model.DefaultRemoteStatus(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rt.logger.Error("Error getting relay status", zap.Int("status_code", resp.StatusCode))
		return model.DefaultRemoteStatus(), nil
	}

	var statuses map[string]*model.PrinterStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		rt.logger.Error("Invalid relay status body", zap.Error(err))
		return model.DefaultRemoteStatus(), nil
	}

	status, ok := statuses[rt.printer]
	if !ok || status == nil {
		rt.logger.Error("Remote does not have printer")
		return model.DefaultRemoteStatus(), nil
	}

	return status, nil
}

// Scheme returns the URI scheme
func (rt *RelayTransport) Scheme() string {
	return rt.scheme
}

// Close drops idle keep-alive connections
func (rt *RelayTransport) Close() error {
	rt.client.CloseIdleConnections()
	return nil
}
