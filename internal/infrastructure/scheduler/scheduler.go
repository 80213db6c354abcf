// Package scheduler runs the periodic maintenance jobs on cron specs, one
// replica at a time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Each run takes the job's lock first and is
// skipped when another replica holds it.
type Scheduler struct {
	cron    *cron.Cron
	locker  port.JobLocker
	lockTTL time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped scheduler. lockTTL also bounds each run.
func New(locker port.JobLocker, lockTTL time.Duration, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		locker:  locker,
		lockTTL: lockTTL,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds job under name on spec ("@every 1h", "0 2 * * *", ...).
func (s *Scheduler) Register(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(s.ctx, name, job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	release, acquired, err := s.locker.TryLock(ctx, name, s.lockTTL)
	if err != nil {
		s.logger.Error("job lock unavailable", "job", name, "error", err)
		return
	}
	if !acquired {
		s.logger.Info("job skipped, lock held elsewhere", "job", name)
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("job failed", "job", name, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Info("job finished", "job", name, "duration", time.Since(start))
}
