package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/eservicedesk/internal/service"
	"github.com/spec-kit/eservicedesk/internal/simrs"
)

// SummaryPoller keeps the bucket summary cache warm so the dashboard's
// summary cards are served without hitting SIMRS on every page refresh. It is
// an owned background task: started once, stopped by cancelling its context.
type SummaryPoller struct {
	workflow *service.WorkflowService
	creds    simrs.Credentials
	interval time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

// NewSummaryPoller builds the poller. creds is the service account used for
// refreshes; callers with their own webmin account still read the same cache.
func NewSummaryPoller(workflow *service.WorkflowService, creds simrs.Credentials, interval time.Duration, logger *zap.Logger) *SummaryPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &SummaryPoller{
		workflow: workflow,
		creds:    creds,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the refresh loop. It returns immediately; the loop runs
// until ctx is cancelled.
func (p *SummaryPoller) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				p.logger.Info("summary poller stopped")
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

// Wait blocks until the loop has exited.
func (p *SummaryPoller) Wait() {
	<-p.done
}

func (p *SummaryPoller) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()
	if err := p.workflow.RefreshSummary(refreshCtx, p.creds); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("summary refresh failed", zap.Error(err))
	}
}
