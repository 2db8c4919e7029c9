package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"community_whatsapp_bot/internal/infra/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DispatchJob processes due pending scheduled content.
type DispatchJob interface {
	ProcessPendingContent(ctx context.Context) error
}

// ReminderJob fans out upcoming-course reminders.
type ReminderJob interface {
	ProcessReminders(ctx context.Context) error
}

// AnalyticsJob maintains the daily rollup and the message-log retention.
type AnalyticsJob interface {
	UpdateDailyAnalytics(ctx context.Context) error
	CleanupOldMessages(ctx context.Context) error
}

// Scheduler runs the periodic jobs on a cron engine. Work is cooperative:
// one tick's work runs at a time per job, and overlapping runs of the same
// job are skipped via a busy flag since a slow fan-out can outlast its tick
// interval. A failing tick is logged and isolated; it never stops the engine.
type Scheduler struct {
	cronEngine *cron.Cron
	dispatch   DispatchJob
	reminders  ReminderJob
	analytics  AnalyticsJob
	logger     *logrus.Entry

	specPendingContent string
	specReminders      string
	specAnalytics      string
	specCleanup        string

	pendingBusy   atomic.Bool
	reminderBusy  atomic.Bool
	analyticsBusy atomic.Bool
	cleanupBusy   atomic.Bool
}

func New(
	dispatch DispatchJob,
	reminders ReminderJob,
	analytics AnalyticsJob,
	cfg *config.AppConfig,
	logger *logrus.Entry,
) *Scheduler {
	return &Scheduler{
		cronEngine:         cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		dispatch:           dispatch,
		reminders:          reminders,
		analytics:          analytics,
		logger:             logger.WithField("component", "scheduler"),
		specPendingContent: cfg.CronSpecPendingContent,
		specReminders:      cfg.CronSpecReminders,
		specAnalytics:      cfg.CronSpecAnalytics,
		specCleanup:        cfg.CronSpecCleanup,
	}
}

func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler...")

	jobs := []struct {
		name    string
		spec    string
		busy    *atomic.Bool
		timeout time.Duration
		run     func(ctx context.Context) error
	}{
		// Broadcasts and reminders get generous timeouts: fan-out latency
		// scales linearly with recipient count.
		{"pending_content", s.specPendingContent, &s.pendingBusy, 30 * time.Minute, s.dispatch.ProcessPendingContent},
		{"reminders", s.specReminders, &s.reminderBusy, 30 * time.Minute, s.reminders.ProcessReminders},
		{"daily_analytics", s.specAnalytics, &s.analyticsBusy, 5 * time.Minute, s.analytics.UpdateDailyAnalytics},
		{"message_cleanup", s.specCleanup, &s.cleanupBusy, 5 * time.Minute, s.analytics.CleanupOldMessages},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cronEngine.AddFunc(job.spec, func() {
			s.runGuarded(job.name, job.busy, job.timeout, job.run)
		})
		if err != nil {
			return err
		}
	}

	s.cronEngine.Start()
	s.logger.Info("Scheduler started with jobs.")
	return nil
}

// runGuarded executes one tick of a job, skipping the tick entirely when the
// previous run of the same job is still in flight.
func (s *Scheduler) runGuarded(name string, busy *atomic.Bool, timeout time.Duration, run func(ctx context.Context) error) {
	if !busy.CompareAndSwap(false, true) {
		s.logger.WithField("job", name).Warn("Previous run still in flight; skipping tick")
		return
	}
	defer busy.Store(false)

	logCtx := s.logger.WithField("job", name)
	logCtx.Debug("Cron job triggered")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx); err != nil {
		logCtx.WithError(err).Error("Job tick failed")
	}
}

func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	ctx := s.cronEngine.Stop() // Stops new ticks, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Scheduler gracefully stopped.")
}
