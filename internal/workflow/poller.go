package workflow

import (
	"context"
	"log/slog"
	"time"

	"vlooo/internal/logging"
	"vlooo/internal/project"
)

// poller periodically fetches backend project status while a conversion is
// in flight and publishes the fine-grained counters to the store. A project
// parked at upload or finished at completed is not polled, and the detailed
// progress hint is cleared on the way out.
type poller struct {
	store    *project.Store
	gateway  Gateway
	interval time.Duration
	logger   *slog.Logger
}

func (p *poller) run(ctx context.Context) {
	changes, unsubscribe := p.store.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	active := false
	p.reconcile(ctx, &active, ticker)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			p.reconcile(ctx, &active, ticker)
		case <-ticker.C:
			if active {
				p.poll(ctx)
			}
		}
	}
}

// reconcile flips polling on or off when the store crosses the active
// boundary. The first poll of an activation fires immediately rather than
// waiting a full interval.
func (p *poller) reconcile(ctx context.Context, active *bool, ticker *time.Ticker) {
	snap := p.store.Snapshot()
	shouldPoll := snap.ProjectID != "" && !snap.Stage.IsTerminal()
	if shouldPoll == *active {
		return
	}
	*active = shouldPoll
	if shouldPoll {
		ticker.Reset(p.interval)
		p.poll(ctx)
		return
	}
	if snap.Detailed != nil {
		p.store.SetDetailedProgress(nil)
	}
}

// poll is lossy on purpose: a failed status fetch clears the hint and the
// next tick tries again. Poll errors never surface to the pipeline.
func (p *poller) poll(ctx context.Context) {
	snap := p.store.Snapshot()
	if snap.ProjectID == "" {
		return
	}
	status, err := p.gateway.ProjectStatus(ctx, snap.ProjectID)
	if err != nil {
		if snap.Detailed != nil {
			p.store.SetDetailedProgress(nil)
		}
		p.logger.Debug("status poll failed",
			logging.Error(err),
			logging.String(logging.FieldProjectID, snap.ProjectID),
		)
		return
	}
	if status.Current > 0 && status.Total > 0 {
		p.store.SetDetailedProgress(&project.DetailedProgress{
			Current: status.Current,
			Total:   status.Total,
			Stage:   status.Stage,
			Details: status.Details,
		})
		return
	}
	if snap.Detailed != nil {
		p.store.SetDetailedProgress(nil)
	}
}
