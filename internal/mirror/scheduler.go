package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Regenerator is satisfied by *Mirror.
type Regenerator interface {
	Regenerate(ctx context.Context) error
}

// Scheduler refreshes the export on a fixed interval in addition to the
// regeneration that follows every mutation. A failed run is logged and the
// next tick tries again.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Regenerator
	interval  time.Duration
	log       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a Scheduler that calls target.Regenerate every interval.
// It does nothing until Start is called.
func NewScheduler(target Regenerator, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("mirror.NewScheduler: interval must be positive, got %s", interval)
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	// SingletonMode skips a tick while the previous run is still going.
	if _, err := s.scheduler.Every(interval).SingletonMode().Do(s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("mirror.NewScheduler: register job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	if err := s.target.Regenerate(s.ctx); err != nil {
		s.log.Warn("scheduled export refresh failed", "error", err)
		return
	}
	s.log.Debug("scheduled export refresh completed")
}

// Start begins running the job in the background.
func (s *Scheduler) Start() {
	s.log.Info("export refresh scheduler started", "interval", s.interval.String())
	s.scheduler.StartAsync()
}

// Stop halts the scheduler and cancels any in-flight run.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
	s.log.Info("export refresh scheduler stopped")
}
