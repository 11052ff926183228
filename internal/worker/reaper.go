// internal/worker/reaper.go
package worker

import (
	"context"
	"time"

	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/common/metrics"
)

// StaleStore is the slice of the store the reaper needs.
type StaleStore interface {
	RequeueStale(ctx context.Context, cutoff time.Time) (int, error)
}

// ReaperConfig controls the stale-job sweep.
type ReaperConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
}

// DefaultReaperConfig returns the default reaper configuration.
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Interval:   time.Minute,
		StaleAfter: 10 * time.Minute,
	}
}

// Reaper periodically resets processing jobs whose heartbeat (updated_at)
// went quiet, returning work abandoned by a crashed worker to the queue.
// Every worker process runs a reaper; the conditional update makes
// concurrent sweeps harmless.
type Reaper struct {
	cfg    ReaperConfig
	store  StaleStore
	logger logger.Logger
}

func NewReaper(cfg ReaperConfig, st StaleStore, log logger.Logger) *Reaper {
	return &Reaper{
		cfg:    cfg,
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "reaper"}),
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	r.logger.Info("Stale-job reaper started", map[string]interface{}{
		"interval":    r.cfg.Interval.String(),
		"stale_after": r.cfg.StaleAfter.String(),
	})

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stale-job reaper stopping", nil)
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one reap pass. Errors are logged; the next tick retries.
func (r *Reaper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.cfg.StaleAfter)
	n, err := r.store.RequeueStale(ctx, cutoff)
	if err != nil {
		r.logger.WithError(err).Error("Stale-job sweep failed", nil)
		return
	}
	if n > 0 {
		metrics.StaleJobsRequeued.Add(float64(n))
		r.logger.Warn("Requeued stale jobs", map[string]interface{}{"requeued": n})
	}
}
