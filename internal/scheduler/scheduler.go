// Package scheduler runs the periodic background jobs of the API process.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fintrack/internal/logger"
	"fintrack/internal/services"
)

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron      *cron.Cron
	reminders services.ReminderServicer
	log       *zap.SugaredLogger
	now       func() time.Time
}

// New registers the loan reminder scan on the standard five-field cron spec.
// Schedules are evaluated in UTC.
func New(reminderSpec string, reminders services.ReminderServicer) (*Scheduler, error) {
	log := logger.Named("scheduler")
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		reminders: reminders,
		log:       log,
		now:       time.Now,
	}

	if _, err := s.cron.AddFunc(reminderSpec, s.runReminders); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Infow("job scheduled", "entry", e.ID, "next_run", e.Next)
	}
}

// Stop prevents new runs and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runReminders() {
	start := s.now()
	reminded, err := s.reminders.RunReminders(start)
	if err != nil {
		s.log.Errorw("reminder run failed", "error", err)
		return
	}
	s.log.Infow("reminder run finished",
		"reminded", reminded,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
