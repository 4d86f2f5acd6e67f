package driver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"label-service/internal/config"
	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	status *model.PrinterStatus
	err    error
	closed bool
}

func (f *fakeTransport) Send(ctx context.Context, job []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, job)
	return nil
}

func (f *fakeTransport) QueryStatus(ctx context.Context) (*model.PrinterStatus, error) {
	return f.status, f.err
}

func (f *fakeTransport) Scheme() string { return "fake" }

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func testPrinters() []config.PrinterConfig {
	return []config.PrinterConfig{
		{Name: "office", URI: "file:///dev/usb/lp0"},
		{Name: "shop", URI: "tcp://192.0.2.20"},
		{Name: "broken", URI: "ftp://192.0.2.30"},
	}
}

func newCountingRegistry(t *testing.T) (*Registry, *atomic.Int32, map[string]*fakeTransport) {
	t.Helper()

	var calls atomic.Int32
	var mu sync.Mutex
	created := make(map[string]*fakeTransport)

	r := NewRegistry(testPrinters(), protocol.DefaultOptions(), zap.NewNop())
	r.resolve = func(uri string, opts protocol.Options, logger *zap.Logger) (protocol.Transport, error) {
		calls.Add(1)
		if uri == "ftp://192.0.2.30" {
			return nil, protocol.ErrUnsupportedScheme
		}
		tr := &fakeTransport{status: &model.PrinterStatus{Media: model.Tape12mm, Ready: true}}
		mu.Lock()
		created[uri] = tr
		mu.Unlock()
		return tr, nil
	}
	return r, &calls, created
}

func TestRegistry_GetCachesDriver(t *testing.T) {
	r, calls, _ := newCountingRegistry(t)

	first, err := r.Get("office")
	require.NoError(t, err)
	second, err := r.Get("office")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "office", first.ID())
}

func TestRegistry_GetUnknownPrinter(t *testing.T) {
	r, calls, _ := newCountingRegistry(t)

	_, err := r.Get("warehouse")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrinterNotFound)
	assert.Zero(t, calls.Load())
}

func TestRegistry_GetResolveFailureNotCached(t *testing.T) {
	r, calls, _ := newCountingRegistry(t)

	_, err := r.Get("broken")
	assert.ErrorIs(t, err, protocol.ErrUnsupportedScheme)
	_, err = r.Get("broken")
	assert.ErrorIs(t, err, protocol.ErrUnsupportedScheme)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRegistry_ConcurrentFirstAccessBuildsOnce(t *testing.T) {
	r, calls, _ := newCountingRegistry(t)

	const workers = 32
	results := make([]any, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := r.Get("shop")
			if err == nil {
				results[i] = d
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestRegistry_PrintersKeepsOrder(t *testing.T) {
	r := NewRegistry(testPrinters(), protocol.DefaultOptions(), zap.NewNop())

	assert.Equal(t, []string{"office", "shop", "broken"}, r.Printers())
	assert.True(t, r.Has("shop"))
	assert.False(t, r.Has("warehouse"))
}

func TestRegistry_ResolvesRealTransport(t *testing.T) {
	r := NewRegistry(testPrinters(), protocol.DefaultOptions(), zap.NewNop())

	d, err := r.Get("office")
	require.NoError(t, err)

	pd, ok := d.(*PrinterDriver)
	require.True(t, ok)
	dt, ok := pd.Transport().(*protocol.DeviceTransport)
	require.True(t, ok)
	assert.Equal(t, "/dev/usb/lp0", dt.Path())
}

func TestRegistry_CloseClosesTransports(t *testing.T) {
	r, calls, created := newCountingRegistry(t)

	_, err := r.Get("office")
	require.NoError(t, err)
	_, err = r.Get("shop")
	require.NoError(t, err)

	require.NoError(t, r.Close())
	for uri, tr := range created {
		assert.True(t, tr.closed, uri)
	}

	_, err = r.Get("office")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPrinterDriver_PrintEncodesBitmap(t *testing.T) {
	tr := &fakeTransport{}
	d := NewPrinterDriver("office", tr, zap.NewNop())

	img := raster.NewBitmap(128, model.HeadHeight)
	require.NoError(t, d.Print(context.Background(), img))

	require.Len(t, tr.sent, 1)
	assert.Len(t, tr.sent[0], raster.EncodedLength(128))
}

func TestPrinterDriver_PrintRejectsWrongHeight(t *testing.T) {
	tr := &fakeTransport{}
	d := NewPrinterDriver("office", tr, zap.NewNop())

	err := d.Print(context.Background(), raster.NewBitmap(128, 64))
	assert.ErrorIs(t, err, raster.ErrInvalidHeight)
	assert.Empty(t, tr.sent)
}

func TestPrinterDriver_PrintRawPropagatesErrors(t *testing.T) {
	sendErr := errors.New("connection reset")
	d := NewPrinterDriver("office", &fakeTransport{err: sendErr}, zap.NewNop())

	err := d.PrintRaw(context.Background(), []byte{0x1A})
	assert.ErrorIs(t, err, sendErr)
}

func TestPrinterDriver_Status(t *testing.T) {
	want := &model.PrinterStatus{Media: model.Tape9mm, Ready: true}
	d := NewPrinterDriver("office", &fakeTransport{status: want}, zap.NewNop())

	status, err := d.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, status)

	d = NewPrinterDriver("office", &fakeTransport{}, zap.NewNop())
	status, err = d.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)
}
