package reservation

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultSweepInterval = 5 * time.Second
	sweepBatchSize       = 256
)

// Sweeper reclaims seats from abandoned holds (browser closed, payment
// form never submitted). It releases expired holds exactly as ReleaseHold
// would, on a fixed interval.
type Sweeper struct {
	manager  *HoldManager
	interval time.Duration
	logger   *slog.Logger

	now func() time.Time
}

func NewSweeper(manager *HoldManager, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold expiry sweep started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold expiry sweep stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep releases every hold whose expiry has passed.
func (s *Sweeper) Sweep(ctx context.Context) {
	expired, err := s.manager.holds.ExpiredBefore(ctx, s.now(), sweepBatchSize)
	if err != nil {
		s.logger.Error("failed to list expired holds", "error", err)
		return
	}

	released := 0

	for _, hold := range expired {
		// Holds awaiting a payment outcome are settled by
		// ResolvePayment, never reclaimed here.
		if hold.PaymentPending {
			continue
		}

		err := s.manager.ReleaseHold(ctx, hold.Token)
		if err != nil {
			s.logger.Error("failed to release expired hold", "error", err, "hold_token", hold.Token)
			continue
		}

		released++
	}

	if released > 0 {
		s.logger.Info("released expired holds", "count", released)
	}
}
