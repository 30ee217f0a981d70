package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for the periodic full rebuild, a safety net against
// missed filesystem events.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *slog.Logger
}

// NewScheduler creates a scheduler instance.
func NewScheduler(log *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, log: log}, nil
}

// SchedulePeriodicRebuild emits a synthetic global batch into the rebuild
// loop every interval. Returns the job ID for later management.
func (s *Scheduler) SchedulePeriodicRebuild(ctx context.Context, interval time.Duration, batches chan<- Batch) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			now := time.Now()
			s.log.Info("scheduled full rebuild")
			select {
			case batches <- Batch{GlobalChanged: true, FirstAt: now, LastAt: now}:
			case <-ctx.Done():
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return "", fmt.Errorf("create periodic rebuild job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.log.Info("stopping scheduler")
	return s.scheduler.Shutdown()
}
