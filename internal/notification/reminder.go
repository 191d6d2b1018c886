package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ReminderSource lists scheduled meetings starting within [from, to). A
// meeting without a time of day starts at midnight UTC of its date.
type ReminderSource interface {
	UpcomingReminders(ctx context.Context, from, to time.Time) ([]Reminder, error)
}

// ReminderJob sends one meeting_reminder batch per meeting for meetings that
// start within the lead window.
type ReminderJob struct {
	source     ReminderSource
	planner    *Planner
	dispatcher *Dispatcher
	repo       RepositoryAPI
	lead       time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewReminderJob(source ReminderSource, planner *Planner, dispatcher *Dispatcher, repo RepositoryAPI, lead time.Duration, logger *slog.Logger) *ReminderJob {
	return &ReminderJob{
		source:     source,
		planner:    planner,
		dispatcher: dispatcher,
		repo:       repo,
		lead:       lead,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source. Used by tests.
func (j *ReminderJob) WithClock(now func() time.Time) *ReminderJob {
	j.now = now
	return j
}

// Run returns the number of meetings reminded in this pass.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()

	reminders, err := j.source.UpcomingReminders(ctx, now, now.Add(j.lead))
	if err != nil {
		return 0, fmt.Errorf("load upcoming meetings: %w", err)
	}

	sent := 0
	for _, r := range reminders {
		already, err := j.repo.SentSince(ctx, r.Meeting.ID, string(TypeMeetingReminder), now.Add(-j.lead))
		if err != nil {
			return sent, err
		}
		if already {
			continue
		}

		commands, err := j.planner.Plan(ctx, r.Meeting, r.Targets, TypeMeetingReminder)
		if err != nil {
			j.logger.Error("failed to plan reminder", "error", err, "meeting_id", r.Meeting.ID)
			continue
		}
		if len(commands) == 0 {
			continue
		}
		if err := j.dispatcher.Dispatch(ctx, commands); err != nil {
			return sent, err
		}
		sent++
	}

	j.logger.Info("reminder pass finished", "candidates", len(reminders), "reminded", sent)
	return sent, nil
}

// Schedule registers the job on c using a standard five-field cron spec.
func (j *ReminderJob) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := j.Run(ctx); err != nil {
			j.logger.Error("reminder job failed", "error", err)
		}
	})
}
