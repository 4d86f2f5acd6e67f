// internal/service/status_poller.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"label-service/internal/model"
)

// StatusPoller publishes a status snapshot of every printer at a fixed interval
type StatusPoller struct {
	service   *PrintService
	publisher EventPublisher
	interval  time.Duration
	logger    *zap.Logger
}

// NewStatusPoller creates a poller. A non-positive interval disables polling.
func NewStatusPoller(service *PrintService, publisher EventPublisher, interval time.Duration, logger *zap.Logger) *StatusPoller {
	return &StatusPoller{
		service:   service,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With(zap.String("component", "status_poller")),
	}
}

// Run polls until ctx is cancelled
func (p *StatusPoller) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Info("Status polling disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Status polling started", zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Status polling stopped")
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll publishes one snapshot
func (p *StatusPoller) Poll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	p.publisher.Publish(model.Event{
		Type:      model.EventTypeStatus,
		Status:    p.service.Status(pollCtx),
		Timestamp: time.Now().UTC(),
	})
}
