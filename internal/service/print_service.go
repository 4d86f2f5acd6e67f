// internal/service/print_service.go
package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"label-service/internal/label"
	"label-service/internal/model"
	"label-service/internal/raster"
	"label-service/internal/repository"
	"label-service/internal/utils"
	"label-service/pkg/driver"
)

// MaxCopies bounds the count of a single print request
const MaxCopies = 100

// PrinterRegistry resolves printer identifiers to drivers
type PrinterRegistry interface {
	Get(printerID string) (driver.Printer, error)
	Printers() []string
}

// EventPublisher receives job events
type EventPublisher interface {
	Publish(event model.Event)
}

// PrintService renders labels and sends them to printers
type PrintService struct {
	registry PrinterRegistry
	renderer *label.Renderer
	jobs     repository.JobRepository
	events   EventPublisher
	logger   *utils.ServiceLogger

	// print and status calls for one printer never overlap
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewPrintService creates a new print service. events may be nil.
func NewPrintService(
	registry PrinterRegistry,
	renderer *label.Renderer,
	jobs repository.JobRepository,
	events EventPublisher,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		registry: registry,
		renderer: renderer,
		jobs:     jobs,
		events:   events,
		logger:   utils.NewServiceLogger(logger, "print-service"),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Print renders the label once and sends it count times. It returns the
// number of copies the printer accepted.
func (s *PrintService) Print(ctx context.Context, req *model.PrintRequest) (int, error) {
	count := req.Count
	if count == 0 {
		count = 1
	}
	if count < 0 || count > MaxCopies {
		return 0, fmt.Errorf("%w: count must be between 1 and %d", label.ErrInvalidLabel, MaxCopies)
	}

	printer, err := s.registry.Get(req.Label.Printer)
	if err != nil {
		return 0, err
	}

	job, err := s.buildJob(&req.Label)
	if err != nil {
		return 0, err
	}

	jobID := uuid.New()
	jobLogger := utils.NewJobLogger(s.logger.Logger, jobID.String(), printer.ID())
	jobLogger.Started(string(req.Label.LabelType), count, len(job))

	printed, printErr := s.send(ctx, printer, job, count)

	record := &model.PrintJob{
		ID:        jobID,
		Printer:   printer.ID(),
		LabelType: req.Label.LabelType,
		Tape:      req.Label.Tape,
		Copies:    printed,
		Bytes:     len(job),
		Status:    model.JobStatusPrinted,
		CreatedAt: time.Now().UTC(),
	}

	if printErr != nil {
		message := printErr.Error()
		record.Status = model.JobStatusFailed
		record.ErrorMessage = &message
	}
	jobLogger.Finished(printed, printErr)

	if err := s.jobs.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record print job", zap.String("job_id", jobID.String()), zap.Error(err))
	}

	if s.events != nil {
		s.events.Publish(model.Event{
			Type:      model.EventTypeJob,
			Job:       record,
			Timestamp: record.CreatedAt,
		})
	}

	return printed, printErr
}

// buildJob produces the encoded raster job for a label
func (s *PrintService) buildJob(req *model.LabelRequest) ([]byte, error) {
	if req.LabelType == model.LabelTypeRaw {
		return label.DecodeRaw(req)
	}

	img, err := s.renderer.Render(req)
	if err != nil {
		return nil, err
	}

	composed, err := label.Compose(img, req.Tape)
	if err != nil {
		return nil, err
	}

	return raster.Encode(composed)
}

func (s *PrintService) send(ctx context.Context, printer driver.Printer, job []byte, count int) (int, error) {
	lock := s.printerLock(printer.ID())
	lock.Lock()
	defer lock.Unlock()

	for i := 0; i < count; i++ {
		if err := printer.PrintRaw(ctx, job); err != nil {
			return i, err
		}
	}
	return count, nil
}

func (s *PrintService) printerLock(printerID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[printerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[printerID] = lock
	}
	return lock
}

// Preview renders a label to a PNG. Width and height are reported as
// multiples of the print head height.
func (s *PrintService) Preview(ctx context.Context, req *model.LabelRequest, maxWidth int) (*model.PreviewResponse, error) {
	if maxWidth < 0 {
		return nil, fmt.Errorf("%w: max_width must not be negative", label.ErrInvalidLabel)
	}

	img, err := s.renderer.Render(req)
	if err != nil {
		return nil, err
	}

	response := &model.PreviewResponse{
		Width:  headMultiple(img.Width()),
		Height: headMultiple(img.Height()),
	}

	var preview image.Image = img.Image()
	if maxWidth != 0 && maxWidth < img.Width() {
		height := max(img.Height()*maxWidth/img.Width(), 1)
		scaled := image.NewGray(image.Rect(0, 0, maxWidth, height))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), preview, preview.Bounds(), draw.Src, nil)
		preview = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, preview); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	response.Preview = base64.StdEncoding.EncodeToString(buf.Bytes())
	return response, nil
}

func headMultiple(px int) string {
	return decimal.NewFromInt(int64(px)).
		Div(decimal.NewFromInt(model.HeadHeight)).
		StringFixed(1)
}

// Status queries every configured printer. Printers that did not answer or
// failed map to nil.
func (s *PrintService) Status(ctx context.Context) map[string]*model.PrinterStatus {
	printers := s.registry.Printers()
	statuses := make(map[string]*model.PrinterStatus, len(printers))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, printerID := range printers {
		wg.Add(1)
		go func(printerID string) {
			defer wg.Done()

			status, err := s.printerStatus(ctx, printerID)
			if err != nil {
				s.logger.Warn("Failed to get printer status",
					zap.String("printer_id", printerID),
					zap.Error(err),
				)
			}

			mu.Lock()
			statuses[printerID] = status
			mu.Unlock()
		}(printerID)
	}

	wg.Wait()
	return statuses
}

func (s *PrintService) printerStatus(ctx context.Context, printerID string) (*model.PrinterStatus, error) {
	printer, err := s.registry.Get(printerID)
	if err != nil {
		return nil, err
	}

	lock := s.printerLock(printerID)
	lock.Lock()
	defer lock.Unlock()

	status, err := printer.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Config describes the tapes, printers and fonts a request may use
func (s *PrintService) Config() *model.ServiceConfig {
	return &model.ServiceConfig{
		Tapes:    model.TapeSizes(),
		Printers: s.registry.Printers(),
		Fonts:    s.renderer.Fonts().Names(),
	}
}

// Jobs returns recent print jobs, newest first
func (s *PrintService) Jobs(ctx context.Context, printerID string, limit int) ([]*model.PrintJob, error) {
	jobs, err := s.jobs.List(ctx, &repository.JobFilter{
		Printer: printerID,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	if jobs == nil {
		jobs = []*model.PrintJob{}
	}
	return jobs, nil
}
