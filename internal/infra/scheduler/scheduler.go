// Package scheduler runs the alert evaluator on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/infra/telemetry"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// Sweeper evaluates every active alert once.
type Sweeper interface {
	Sweep(ctx context.Context) (usecase.SweepReport, error)
}

// Scheduler drives periodic alert sweeps.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
	metrics  *telemetry.Provider

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a scheduler. Interval must be positive.
func New(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// WithMetrics attaches the sweep counters.
func (s *Scheduler) WithMetrics(metrics *telemetry.Provider) *Scheduler {
	s.metrics = metrics
	return s
}

// Start launches the sweep loop in a background goroutine. The first sweep
// runs after one interval, not immediately, so startup is not penalized.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("alert evaluation scheduler started",
		zap.Duration("interval", s.interval),
	)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	started := time.Now()

	report, err := s.sweeper.Sweep(ctx)
	s.metrics.SweepCounter().Inc()
	if err != nil {
		s.logger.Error("alert sweep failed", zap.Error(err))
		return
	}
	if report.Triggered > 0 {
		s.metrics.TriggerCounter().Add(float64(report.Triggered))
	}

	s.logger.Info("alert sweep completed",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("triggered", report.Triggered),
		zap.Int("resolved", report.Resolved),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("took", time.Since(started)),
	)
}

// Stop cancels the sweep loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.logger.Info("alert evaluation scheduler stopped")
}
