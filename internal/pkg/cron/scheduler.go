package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
)

// Job represents a scheduled job
type Job struct {
	Name string
	Fn   func(ctx context.Context) error

	// next returns the next fire time strictly after now
	next         func(now time.Time) time.Time
	scheduleDesc string
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs   []Job
	clock  clock.Clock
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler(clk clock.Clock) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		clock:  clk,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddDailyJob adds a job that fires once per calendar day at hour:minute in loc.
func (s *Scheduler) AddDailyJob(name string, hour, minute int, loc *time.Location, fn func(ctx context.Context) error) {
	s.add(Job{
		Name: name,
		Fn:   fn,
		next: func(now time.Time) time.Time {
			return NextDailyRun(now, hour, minute, loc)
		},
		scheduleDesc: fmt.Sprintf("daily at %02d:%02d %s", hour, minute, loc),
	})
}

func (s *Scheduler) add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", job.Name, "schedule", job.scheduleDesc)
}

// NextDailyRun returns the first hour:minute in loc strictly after now.
func NextDailyRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	for {
		now := s.clock.Now()
		fireAt := job.next(now)
		timer := time.NewTimer(fireAt.Sub(now))

		select {
		case <-s.ctx.Done():
			timer.Stop()
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-timer.C:
			s.executeJob(s.ctx, job)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(ctx)
	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}
