// Package scheduler runs the reminder job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single reminder run.
const DefaultJobTimeout = 5 * time.Minute

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// ReminderScheduler triggers a Job on a standard five-field cron spec in server local time.
type ReminderScheduler struct {
	engine  *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
}

// NewReminderScheduler creates a scheduler for job. Nothing runs until Start.
func NewReminderScheduler(spec string, job Job) *ReminderScheduler {
	return &ReminderScheduler{
		engine:  cron.New(cron.WithLocation(time.Local)),
		spec:    spec,
		job:     job,
		timeout: DefaultJobTimeout,
	}
}

// Start registers the job and starts the cron engine.
// PRE: spec parses as a cron expression
// POST: job runs on schedule until Stop
func (s *ReminderScheduler) Start() error {
	if _, err := s.engine.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.spec, err)
	}
	s.engine.Start()
	slog.Info("scheduler_event", "event", "scheduler_started", "spec", s.spec)
	return nil
}

func (s *ReminderScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := s.job(ctx); err != nil {
		slog.Error("scheduler_event", "event", "job_failed", "error", err)
		return
	}
	slog.Info("scheduler_event", "event", "job_completed", "duration_ms", time.Since(start).Milliseconds())
}

// Stop stops scheduling and waits for a running job to finish.
func (s *ReminderScheduler) Stop() {
	<-s.engine.Stop().Done()
	slog.Info("scheduler_event", "event", "scheduler_stopped")
}
