package notification_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/meeting-manager/internal/core/events"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeDirectory struct {
	recipients []notification.Recipient
	err        error
	calls      [][]notification.Target
}

func (f *fakeDirectory) Recipients(_ context.Context, targets []notification.Target) ([]notification.Recipient, error) {
	f.calls = append(f.calls, targets)
	return f.recipients, f.err
}

type recordingDeliverer struct {
	sent []string
	err  error
}

func (r *recordingDeliverer) Deliver(_ context.Context, zaloID, _ string) error {
	r.sent = append(r.sent, zaloID)
	return r.err
}

var _ = Describe("Planner", func() {
	meeting := notification.MeetingInfo{
		ID:       3,
		Number:   "HOP-2026-0003",
		Title:    "Giao ban khoa",
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Time:     strPtr("08:30"),
		Location: strPtr("Phòng họp A"),
	}

	It("should render the Vietnamese message", func() {
		msg := notification.Message(notification.TypeMeetingCreated, meeting)
		Expect(msg).To(Equal("Cuộc họp mới: Giao ban khoa (HOP-2026-0003) - ngày 02/03/2026 lúc 08:30 tại Phòng họp A"))
	})

	It("should plan one command per distinct user and honour zalo opt-in", func() {
		dir := &fakeDirectory{recipients: []notification.Recipient{
			{UserID: 9, ZaloID: strPtr("z-9"), ZaloNotification: true},
			{UserID: 4, ZaloID: strPtr("z-4"), ZaloNotification: false},
			{UserID: 9, ZaloID: strPtr("z-9"), ZaloNotification: true},
			{UserID: 6, ZaloNotification: true},
		}}

		cmds, err := notification.NewPlanner(dir).Plan(context.Background(), meeting,
			[]notification.Target{{Kind: notification.TargetUser, RefID: 9}}, notification.TypeMeetingUpdated)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmds).To(HaveLen(3))
		Expect(cmds[0].UserID).To(Equal(int64(4)))
		Expect(cmds[0].Deliverable()).To(BeFalse())
		Expect(cmds[1].Deliverable()).To(BeFalse())
		Expect(cmds[2].UserID).To(Equal(int64(9)))
		Expect(*cmds[2].ZaloID).To(Equal("z-9"))
		Expect(cmds[2].Type).To(Equal(notification.TypeMeetingUpdated))
	})

	It("should skip the directory when there are no targets", func() {
		dir := &fakeDirectory{}
		cmds, err := notification.NewPlanner(dir).Plan(context.Background(), meeting, nil, notification.TypeMeetingCreated)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmds).To(BeEmpty())
		Expect(dir.calls).To(BeEmpty())
	})

	It("should propagate directory failures", func() {
		dir := &fakeDirectory{err: errors.New("db down")}
		_, err := notification.NewPlanner(dir).Plan(context.Background(), meeting,
			[]notification.Target{{Kind: notification.TargetDepartment, RefID: 1}}, notification.TypeMeetingCreated)
		Expect(err).To(MatchError("db down"))
	})
})

var _ = Describe("Zalo delivery", func() {
	It("should hand requested notifications to the deliverer", func() {
		d := &recordingDeliverer{}
		h := notification.NewEventHandler(d, logger.Discard())

		evt := events.NewNotificationRequestedEvent(1, 2, 3, "z-3", "meeting_created", "hello")
		Expect(h.HandleNotificationRequested(context.Background(), evt)).To(Succeed())
		Expect(d.sent).To(Equal([]string{"z-3"}))
	})

	It("should reject foreign event types", func() {
		h := notification.NewEventHandler(&recordingDeliverer{}, logger.Discard())
		err := h.HandleNotificationRequested(context.Background(), events.BaseEvent{Type: "other"})
		Expect(err).To(HaveOccurred())
	})

	It("should treat the disabled stub as a no-op", func() {
		z := notification.NewZaloDeliverer(false, logger.Discard())
		Expect(z.Deliver(context.Background(), "z-1", "hi")).To(Succeed())
		Expect(z.Deliver(context.Background(), "", "hi")).NotTo(Succeed())
	})
})
