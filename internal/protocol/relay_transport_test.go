package protocol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"label-service/internal/model"
)

func newTestRelayTransport(t *testing.T, rawURL string) *RelayTransport {
	t.Helper()

	parts, err := url.Parse(rawURL)
	require.NoError(t, err)

	rt, err := NewRelayTransport(parts, DefaultOptions(), zap.NewNop())
	require.NoError(t, err)
	return rt
}

func TestRelayTransport_QueryStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"office": {"media": "12mm", "ready": true}, "shop": null}`))
	}))
	defer srv.Close()

	rt := newTestRelayTransport(t, srv.URL+"/office")
	status, err := rt.QueryStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.PrinterStatus{Media: model.Tape12mm, Ready: true}, status)

	rt = newTestRelayTransport(t, srv.URL+"/shop")
	status, err = rt.QueryStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRemoteStatus(), status)

	rt = newTestRelayTransport(t, srv.URL+"/warehouse")
	status, err = rt.QueryStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRemoteStatus(), status)
}

func TestRelayTransport_QueryStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	rt := newTestRelayTransport(t, srv.URL+"/office")
	status, err := rt.QueryStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.PrinterStatus{Media: model.Tape24mm, Ready: false}, status)
}

func TestRelayTransport_QueryStatusUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	rt := newTestRelayTransport(t, srv.URL+"/office")
	status, err := rt.QueryStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRemoteStatus(), status)
}

func TestRelayTransport_SendForwardsRawLabel(t *testing.T) {
	job := []byte{0x00, 0x1B, 0x40, 0x1A}

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/print", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"printed": 1}`))
	}))
	defer srv.Close()

	rt := newTestRelayTransport(t, srv.URL+"/api/office")
	require.NoError(t, rt.Send(context.Background(), job))

	require.NotNil(t, body)
	assert.EqualValues(t, 1, body["count"])

	label, ok := body["label"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "raw", label["label_type"])
	assert.Equal(t, "office", label["printer"])
	assert.Equal(t, "6mm", label["tape"])
	assert.Equal(t, "mono", label["fontname"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(job), label["b64_bytes"])
}

func TestRelayTransport_SendRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rt := newTestRelayTransport(t, srv.URL+"/office")
	err := rt.Send(context.Background(), []byte{0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransmission)
}
