package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalDriver "label-service/internal/driver"
	"label-service/internal/label"
	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
	"label-service/internal/repository"
	"label-service/internal/service"
	"label-service/internal/utils"
	"label-service/pkg/driver"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPrinter struct {
	id      string
	mu      sync.Mutex
	jobs    int
	sendErr error
	status  *model.PrinterStatus
}

func (p *stubPrinter) ID() string { return p.id }

func (p *stubPrinter) Print(ctx context.Context, img *raster.Bitmap) error {
	job, err := raster.Encode(img)
	if err != nil {
		return err
	}
	return p.PrintRaw(ctx, job)
}

func (p *stubPrinter) PrintRaw(ctx context.Context, job []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.jobs++
	return nil
}

func (p *stubPrinter) Status(ctx context.Context) (*model.PrinterStatus, error) {
	return p.status, nil
}

func (p *stubPrinter) Close() error { return nil }

type stubRegistry map[string]*stubPrinter

func (r stubRegistry) Get(printerID string) (driver.Printer, error) {
	p, ok := r[printerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", internalDriver.ErrPrinterNotFound, printerID)
	}
	return p, nil
}

func (r stubRegistry) Printers() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

func newLabelRouter(printers ...*stubPrinter) *gin.Engine {
	registry := stubRegistry{}
	for _, p := range printers {
		registry[p.id] = p
	}

	logger := zap.NewNop()
	renderer := label.NewRenderer(label.NewFonts(nil, "", logger), logger)
	svc := service.NewPrintService(registry, renderer, repository.NewMemoryJobRepository(10), nil, logger)
	h := NewLabelHandler(svc, logger)

	router := gin.New()
	router.GET("/status", h.GetStatus)
	router.PUT("/print", h.Print)
	router.PUT("/preview", h.Preview)
	router.GET("/config", h.GetConfig)
	router.GET("/jobs", h.ListJobs)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func textLabel(printer string, count int) model.PrintRequest {
	return model.PrintRequest{
		Count: count,
		Label: model.LabelRequest{
			LabelType: model.LabelTypeText,
			Printer:   printer,
			Tape:      model.Tape12mm,
			Fontname:  "mono",
			Lines:     []string{"Shelf A"},
		},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestGetStatus_NullForSilentPrinters(t *testing.T) {
	router := newLabelRouter(
		&stubPrinter{id: "office", status: &model.PrinterStatus{Media: model.Tape12mm, Ready: true}},
		&stubPrinter{id: "garage"},
	)

	w := doJSON(t, router, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `{"media":"12mm","ready":true}`, string(body["office"]))
	assert.Equal(t, "null", string(body["garage"]))
}

func TestPrint_ReturnsPrintedCount(t *testing.T) {
	office := &stubPrinter{id: "office"}
	router := newLabelRouter(office)

	w := doJSON(t, router, http.MethodPut, "/print", textLabel("office", 2))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"printed":2}`, w.Body.String())
	assert.Equal(t, 2, office.jobs)
}

func TestPrint_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		printer *stubPrinter
		request model.PrintRequest
		status  int
		code    string
	}{
		{
			name:    "unknown printer",
			printer: &stubPrinter{id: "office"},
			request: textLabel("attic", 1),
			status:  http.StatusBadRequest,
			code:    "BAD_REQUEST",
		},
		{
			name:    "count out of range",
			printer: &stubPrinter{id: "office"},
			request: textLabel("office", service.MaxCopies+1),
			status:  http.StatusBadRequest,
			code:    "BAD_REQUEST",
		},
		{
			name:    "printer unreachable",
			printer: &stubPrinter{id: "office", sendErr: fmt.Errorf("%w: connection refused", protocol.ErrTransmission)},
			request: textLabel("office", 1),
			status:  http.StatusBadGateway,
			code:    "PRINTER_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLabelRouter(tt.printer)

			w := doJSON(t, router, http.MethodPut, "/print", tt.request)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestPrint_MissingLabelType(t *testing.T) {
	router := newLabelRouter(&stubPrinter{id: "office"})

	w := doJSON(t, router, http.MethodPut, "/print", map[string]interface{}{
		"count": 1,
		"label": map[string]interface{}{"printer": "office"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview_ReturnsImage(t *testing.T) {
	router := newLabelRouter(&stubPrinter{id: "office"})

	w := doJSON(t, router, http.MethodPut, "/preview?max_width=64", textLabel("office", 1))
	require.Equal(t, http.StatusOK, w.Code)

	var preview model.PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.NotEmpty(t, preview.Preview)
	assert.NotEmpty(t, preview.Width)
	assert.NotEmpty(t, preview.Height)
}

func TestPreview_InvalidMaxWidth(t *testing.T) {
	router := newLabelRouter(&stubPrinter{id: "office"})

	w := doJSON(t, router, http.MethodPut, "/preview?max_width=wide", textLabel("office", 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConfig(t *testing.T) {
	router := newLabelRouter(&stubPrinter{id: "office"})

	w := doJSON(t, router, http.MethodGet, "/config", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cfg model.ServiceConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, []string{"office"}, cfg.Printers)
	assert.Contains(t, cfg.Fonts, label.DefaultFont)
	assert.NotEmpty(t, cfg.Tapes)
}

func TestListJobs(t *testing.T) {
	router := newLabelRouter(&stubPrinter{id: "office"})

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPut, "/print", textLabel("office", 1)).Code)

	w := doJSON(t, router, http.MethodGet, "/jobs?printer=office&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []*model.PrintJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "office", resp.Data[0].Printer)
	assert.Equal(t, model.JobStatusPrinted, resp.Data[0].Status)
}

func TestListJobs_InvalidLimit(t *testing.T) {
	router := newLabelRouter(&stubPrinter{id: "office"})

	w := doJSON(t, router, http.MethodGet, "/jobs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
