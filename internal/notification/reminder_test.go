package notification_test

import (
	"context"
	"time"

	"github.com/frahmantamala/meeting-manager/internal/database"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	notificationPostgres "github.com/frahmantamala/meeting-manager/internal/notification/postgres"
	"github.com/frahmantamala/meeting-manager/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/robfig/cron/v3"
)

type fakeSource struct {
	reminders []notification.Reminder
	from, to  time.Time
}

func (f *fakeSource) UpcomingReminders(_ context.Context, from, to time.Time) ([]notification.Reminder, error) {
	f.from, f.to = from, to
	return f.reminders, nil
}

var _ = Describe("ReminderJob", func() {
	var (
		ctx     context.Context
		handles *database.Handles
		repo    notification.RepositoryAPI
		source  *fakeSource
		job     *notification.ReminderJob
		now     time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		handles, err = database.OpenSQLite("")
		Expect(err).NotTo(HaveOccurred())

		repo = notificationPostgres.NewNotificationRepository(handles.Gorm)
		dir := &fakeDirectory{recipients: []notification.Recipient{{UserID: 1}, {UserID: 2}}}
		source = &fakeSource{reminders: []notification.Reminder{{
			Meeting: notification.MeetingInfo{ID: 7, Number: "HOP-2026-0007", Title: "Họp chi bộ", Date: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)},
			Targets: []notification.Target{{Kind: notification.TargetDepartment, RefID: 3}},
		}}}

		now = time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)
		job = notification.NewReminderJob(source, notification.NewPlanner(dir),
			notification.NewDispatcher(repo, nil, logger.Discard()), repo, 24*time.Hour, logger.Discard()).
			WithClock(func() time.Time { return now })
	})

	AfterEach(func() {
		Expect(handles.Close()).To(Succeed())
	})

	It("should query the lead window and remind each meeting once", func() {
		n, err := job.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(source.from).To(Equal(now))
		Expect(source.to).To(Equal(now.Add(24 * time.Hour)))

		inbox, err := notification.NewService(repo, logger.Discard()).Inbox(ctx, 1, notification.InboxQuery{})
		Expect(err).NotTo(HaveOccurred())
		Expect(inbox.Notifications).To(HaveLen(1))
		Expect(inbox.Notifications[0].Type).To(Equal(notification.TypeMeetingReminder))

		n, err = job.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})

	It("should register on a cron scheduler", func() {
		c := cron.New()
		id, err := job.Schedule(ctx, c, "0 7 * * *")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Entry(id).ID).To(Equal(id))

		_, err = job.Schedule(ctx, c, "not a spec")
		Expect(err).To(HaveOccurred())
	})
})
