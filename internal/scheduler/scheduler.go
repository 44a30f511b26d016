// Package scheduler runs periodic jobs on a cron engine.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"meowscale/internal/logging"
)

// Manager owns the cron engine and the registered jobs.
type Manager struct {
	engine *cron.Cron
}

// NewManager returns a Manager whose specs accept an optional seconds field.
func NewManager() *Manager {
	return &Manager{
		engine: cron.New(cron.WithParser(cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
	}
}

// Register adds job under spec.
func (m *Manager) Register(spec string, job cron.Job) error {
	_, err := m.engine.AddJob(spec, job)
	return err
}

// Start runs the engine in its own goroutine.
func (m *Manager) Start() {
	slog.Info("cron engine started", "jobs", len(m.engine.Entries()))
	m.engine.Start()
}

// Stop halts the engine and waits for running jobs until ctx is done.
func (m *Manager) Stop(ctx context.Context) {
	done := m.engine.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("cron jobs still running at shutdown")
	}
	slog.Info("cron engine stopped")
}

// ReminderSender is the use case the reminder job drives.
type ReminderSender interface {
	SendDue(ctx context.Context) (int, error)
}

// ReminderObserver receives the outcome of each run.
type ReminderObserver interface {
	RemindersSent(sent int, failed bool)
}

// ReminderJob sends due reminders. It is meant to run every minute.
type ReminderJob struct {
	sender   ReminderSender
	observer ReminderObserver
	timeout  time.Duration
}

// NewReminderJob returns a job bounded by timeout per run. observer may be nil.
func NewReminderJob(sender ReminderSender, observer ReminderObserver, timeout time.Duration) *ReminderJob {
	return &ReminderJob{sender: sender, observer: observer, timeout: timeout}
}

// Run implements cron.Job.
func (j *ReminderJob) Run() {
	ctx := logging.WithTraceID(context.Background(), "job-"+uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	sent, err := j.sender.SendDue(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reminder run failed", "sent", sent, "err", err)
	} else if sent > 0 {
		slog.InfoContext(ctx, "reminders sent", "sent", sent)
	}
	if j.observer != nil {
		j.observer.RemindersSent(sent, err != nil)
	}
}
