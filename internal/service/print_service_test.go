package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalDriver "label-service/internal/driver"
	"label-service/internal/label"
	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
	"label-service/internal/repository"
	"label-service/pkg/driver"
)

type fakePrinter struct {
	id       string
	mu       sync.Mutex
	jobs     [][]byte
	failAt   int
	status   *model.PrinterStatus
	statusFn func() (*model.PrinterStatus, error)
}

func (p *fakePrinter) ID() string { return p.id }

func (p *fakePrinter) Print(ctx context.Context, img *raster.Bitmap) error {
	job, err := raster.Encode(img)
	if err != nil {
		return err
	}
	return p.PrintRaw(ctx, job)
}

func (p *fakePrinter) PrintRaw(ctx context.Context, job []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAt > 0 && len(p.jobs)+1 == p.failAt {
		return fmt.Errorf("%w: connection reset", protocol.ErrTransmission)
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *fakePrinter) Status(ctx context.Context) (*model.PrinterStatus, error) {
	if p.statusFn != nil {
		return p.statusFn()
	}
	return p.status, nil
}

func (p *fakePrinter) Close() error { return nil }

type fakeRegistry struct {
	printers map[string]*fakePrinter
	order    []string
}

func newFakeRegistry(printers ...*fakePrinter) *fakeRegistry {
	r := &fakeRegistry{printers: make(map[string]*fakePrinter)}
	for _, p := range printers {
		r.printers[p.id] = p
		r.order = append(r.order, p.id)
	}
	return r
}

func (r *fakeRegistry) Get(printerID string) (driver.Printer, error) {
	p, ok := r.printers[printerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", internalDriver.ErrPrinterNotFound, printerID)
	}
	return p, nil
}

func (r *fakeRegistry) Printers() []string {
	return r.order
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newTestService(printers ...*fakePrinter) (*PrintService, repository.JobRepository, *recordingPublisher) {
	renderer := label.NewRenderer(label.NewFonts(nil, "", zap.NewNop()), zap.NewNop())
	jobs := repository.NewMemoryJobRepository(10)
	events := &recordingPublisher{}
	return NewPrintService(newFakeRegistry(printers...), renderer, jobs, events, zap.NewNop()), jobs, events
}

func textRequest(printer string, count int) *model.PrintRequest {
	return &model.PrintRequest{
		Count: count,
		Label: model.LabelRequest{
			LabelType: model.LabelTypeText,
			Printer:   printer,
			Tape:      model.Tape12mm,
			Fontname:  "mono",
			Lines:     []string{"Hello"},
		},
	}
}

func TestPrint_SendsEncodedCopies(t *testing.T) {
	office := &fakePrinter{id: "office"}
	svc, jobs, events := newTestService(office)

	printed, err := svc.Print(context.Background(), textRequest("office", 3))
	require.NoError(t, err)
	assert.Equal(t, 3, printed)

	require.Len(t, office.jobs, 3)
	job := office.jobs[0]
	assert.Equal(t, job, office.jobs[2])
	assert.Equal(t, 0, (len(job)-raster.EncodedLength(0))%(4+raster.BytesPerRow))
	assert.Equal(t, byte(0x1A), job[len(job)-1])

	history, err := jobs.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.JobStatusPrinted, history[0].Status)
	assert.Equal(t, 3, history[0].Copies)
	assert.Equal(t, len(job), history[0].Bytes)

	require.Len(t, events.events, 1)
	assert.Equal(t, model.EventTypeJob, events.events[0].Type)
	assert.Equal(t, "office", events.events[0].Job.Printer)
}

func TestPrint_DefaultsToOneCopy(t *testing.T) {
	office := &fakePrinter{id: "office"}
	svc, _, _ := newTestService(office)

	printed, err := svc.Print(context.Background(), textRequest("office", 0))
	require.NoError(t, err)
	assert.Equal(t, 1, printed)
	assert.Len(t, office.jobs, 1)
}

func TestPrint_RejectsBadCount(t *testing.T) {
	svc, _, _ := newTestService(&fakePrinter{id: "office"})

	for _, count := range []int{-1, MaxCopies + 1} {
		_, err := svc.Print(context.Background(), textRequest("office", count))
		assert.ErrorIs(t, err, label.ErrInvalidLabel)
	}
}

func TestPrint_UnknownPrinter(t *testing.T) {
	svc, jobs, events := newTestService(&fakePrinter{id: "office"})

	_, err := svc.Print(context.Background(), textRequest("warehouse", 1))
	assert.ErrorIs(t, err, internalDriver.ErrPrinterNotFound)

	history, err := jobs.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, events.events)
}

func TestPrint_TransmissionFailureRecorded(t *testing.T) {
	office := &fakePrinter{id: "office", failAt: 2}
	svc, jobs, _ := newTestService(office)

	printed, err := svc.Print(context.Background(), textRequest("office", 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrTransmission)
	assert.Equal(t, 1, printed)

	history, err := jobs.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.JobStatusFailed, history[0].Status)
	assert.Equal(t, 1, history[0].Copies)
	require.NotNil(t, history[0].ErrorMessage)
	assert.Contains(t, *history[0].ErrorMessage, "connection reset")
}

func TestPrint_RawPassthrough(t *testing.T) {
	office := &fakePrinter{id: "office"}
	svc, _, _ := newTestService(office)

	raw := []byte{0x00, 0x1B, 0x40, 0x1A}
	printed, err := svc.Print(context.Background(), &model.PrintRequest{
		Count: 1,
		Label: model.LabelRequest{
			LabelType: model.LabelTypeRaw,
			Printer:   "office",
			Tape:      model.Tape6mm,
			Fontname:  "mono",
			B64Bytes:  base64.StdEncoding.EncodeToString(raw),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, printed)
	require.Len(t, office.jobs, 1)
	assert.Equal(t, raw, office.jobs[0])
}

func TestPreview(t *testing.T) {
	svc, _, _ := newTestService()

	req := &model.LabelRequest{
		LabelType: model.LabelTypeWrap,
		Tape:      model.Tape24mm,
		Label:     "uplink",
		Length:    256,
	}

	preview, err := svc.Preview(context.Background(), req, 0)
	require.NoError(t, err)
	assert.Equal(t, "2.0", preview.Width)
	assert.Equal(t, "1.0", preview.Height)

	data, err := base64.StdEncoding.DecodeString(preview.Preview)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())

	preview, err = svc.Preview(context.Background(), req, 64)
	require.NoError(t, err)
	assert.Equal(t, "2.0", preview.Width)

	data, err = base64.StdEncoding.DecodeString(preview.Preview)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestPreview_Invalid(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Preview(context.Background(), &model.LabelRequest{
		LabelType: model.LabelTypeText,
		Tape:      model.Tape6mm,
	}, 0)
	assert.ErrorIs(t, err, label.ErrInvalidLabel)
}

func TestHeadMultiple(t *testing.T) {
	assert.Equal(t, "1.0", headMultiple(128))
	assert.Equal(t, "0.5", headMultiple(64))
	assert.Equal(t, "0.4", headMultiple(48))
	assert.Equal(t, "3.2", headMultiple(410))
}

func TestStatus(t *testing.T) {
	office := &fakePrinter{id: "office", status: &model.PrinterStatus{Media: model.Tape12mm, Ready: true}}
	shop := &fakePrinter{id: "shop"}
	broken := &fakePrinter{id: "broken", statusFn: func() (*model.PrinterStatus, error) {
		return nil, errors.New("snmp timeout")
	}}
	svc, _, _ := newTestService(office, shop, broken)

	statuses := svc.Status(context.Background())

	require.Len(t, statuses, 3)
	assert.Equal(t, office.status, statuses["office"])
	assert.Contains(t, statuses, "shop")
	assert.Nil(t, statuses["shop"])
	assert.Contains(t, statuses, "broken")
	assert.Nil(t, statuses["broken"])
}

func TestConfig(t *testing.T) {
	svc, _, _ := newTestService(&fakePrinter{id: "office"}, &fakePrinter{id: "shop"})

	cfg := svc.Config()
	assert.Equal(t, []model.TapeSize{model.Tape24mm, model.Tape12mm, model.Tape9mm, model.Tape6mm}, cfg.Tapes)
	assert.Equal(t, []string{"office", "shop"}, cfg.Printers)
	assert.Contains(t, cfg.Fonts, "mono")
}

func TestJobs(t *testing.T) {
	svc, _, _ := newTestService(&fakePrinter{id: "office"}, &fakePrinter{id: "shop"})
	ctx := context.Background()

	_, err := svc.Print(ctx, textRequest("office", 1))
	require.NoError(t, err)
	_, err = svc.Print(ctx, textRequest("shop", 1))
	require.NoError(t, err)

	all, err := svc.Jobs(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	office, err := svc.Jobs(ctx, "office", 10)
	require.NoError(t, err)
	require.Len(t, office, 1)
	assert.Equal(t, "office", office[0].Printer)

	none, err := svc.Jobs(ctx, "warehouse", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStatusPoller_PublishesSnapshot(t *testing.T) {
	office := &fakePrinter{id: "office", status: &model.PrinterStatus{Media: model.Tape24mm, Ready: true}}
	svc, _, _ := newTestService(office)
	events := &recordingPublisher{}

	poller := NewStatusPoller(svc, events, time.Second, zap.NewNop())
	poller.Poll(context.Background())

	require.Len(t, events.events, 1)
	assert.Equal(t, model.EventTypeStatus, events.events[0].Type)
	assert.Equal(t, office.status, events.events[0].Status["office"])
}

func TestStatusPoller_DisabledReturns(t *testing.T) {
	svc, _, _ := newTestService()
	poller := NewStatusPoller(svc, &recordingPublisher{}, 0, zap.NewNop())

	done := make(chan struct{})
	go func() {
		poller.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return with polling disabled")
	}
}
