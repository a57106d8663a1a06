// Package sweeper runs the periodic eviction of sessions whose heartbeats
// stopped arriving.
package sweeper

import (
	"context"
	"time"

	"github.com/evgsol/vipgate/internal/logging"
)

// Cleaner evicts sessions inactive for longer than threshold.
type Cleaner interface {
	CleanupInactive(ctx context.Context, threshold time.Duration) (int64, error)
}

// Sweeper periodically invokes its Cleaner. A failed sweep is logged and the
// loop keeps going; eviction is retried on the next tick anyway.
type Sweeper struct {
	cleaner   Cleaner
	interval  time.Duration
	threshold time.Duration
	logger    logging.Logger
}

func New(cleaner Cleaner, interval, threshold time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		cleaner:   cleaner,
		interval:  interval,
		threshold: threshold,
		logger:    logger.With("module", "sweeper"),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "sweeper started", "interval", s.interval.String(), "threshold", s.threshold.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.cleaner.CleanupInactive(ctx, s.threshold); err != nil {
				s.logger.Error(ctx, "sweep failed", "error", err.Error())
			}
		}
	}
}
