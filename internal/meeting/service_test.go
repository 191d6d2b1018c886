package meeting_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/internal/numbering"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMeetingService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Meeting Service Suite")
}

// MockRepository implements meeting.Repository in memory. Numbers come from
// per-year counters and collide with anything listed in taken.
type MockRepository struct {
	sequences    map[int]int
	meetings     map[int64]*meetingDatamodel.Meeting
	participants map[int64]*meetingDatamodel.MeetingParticipant
	minutes      map[int64]*meetingDatamodel.MeetingMinutes
	taken        map[string]bool
	users        map[int64]string
	departments  map[int64]bool
	orgs         map[int64]bool
	nextID       int64
	failError    error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		sequences:    make(map[int]int),
		meetings:     make(map[int64]*meetingDatamodel.Meeting),
		participants: make(map[int64]*meetingDatamodel.MeetingParticipant),
		minutes:      make(map[int64]*meetingDatamodel.MeetingMinutes),
		taken:        make(map[string]bool),
		users:        map[int64]string{1: "Nguyễn An", 2: "Trần Bình"},
		departments:  map[int64]bool{10: true},
		orgs:         map[int64]bool{20: true},
	}
}

func (m *MockRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockRepository) Create(_ context.Context, row *meetingDatamodel.Meeting, participants []*meetingDatamodel.MeetingParticipant, policy meeting.NumberPolicy) error {
	if m.failError != nil {
		return m.failError
	}
	for i := 0; i < policy.MaxAttempts; i++ {
		m.sequences[policy.Year]++
		number := numbering.Format(policy.Prefix, policy.Year, m.sequences[policy.Year])
		if m.taken[number] {
			continue
		}
		m.taken[number] = true
		row.ID = m.id()
		row.MeetingNumber = number
		m.meetings[row.ID] = row
		for _, p := range participants {
			p.ID = m.id()
			p.MeetingID = row.ID
			m.participants[p.ID] = p
		}
		return nil
	}
	return meeting.ErrMeetingNumberTaken
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*meetingDatamodel.Meeting, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	row, ok := m.meetings[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *MockRepository) Update(_ context.Context, row *meetingDatamodel.Meeting) error {
	existing, ok := m.meetings[row.ID]
	if !ok {
		return meeting.ErrMeetingNotFound
	}
	cp := *row
	cp.MeetingNumber = existing.MeetingNumber
	m.meetings[row.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.meetings[id]; !ok {
		return meeting.ErrMeetingNotFound
	}
	delete(m.meetings, id)
	delete(m.minutes, id)
	for pid, p := range m.participants {
		if p.MeetingID == id {
			delete(m.participants, pid)
		}
	}
	return nil
}

func (m *MockRepository) List(_ context.Context, f meeting.Filter) ([]*meetingDatamodel.Meeting, int64, error) {
	var out []*meetingDatamodel.Meeting
	for _, row := range m.meetings {
		if f.Status != nil && row.Status != string(*f.Status) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, int64(len(out)), nil
}

func (m *MockRepository) Scheduled(_ context.Context, from, to time.Time) ([]*meetingDatamodel.Meeting, error) {
	var out []*meetingDatamodel.Meeting
	for _, row := range m.meetings {
		if row.Status != string(meeting.StatusScheduled) || row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) UserNames(_ context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range ids {
		if name, ok := m.users[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (m *MockRepository) MissingReferences(_ context.Context, refs meeting.References) (meeting.References, error) {
	var missing meeting.References
	for _, id := range refs.UserIDs {
		if _, ok := m.users[id]; !ok {
			missing.UserIDs = append(missing.UserIDs, id)
		}
	}
	for _, id := range refs.DepartmentIDs {
		if !m.departments[id] {
			missing.DepartmentIDs = append(missing.DepartmentIDs, id)
		}
	}
	for _, id := range refs.OrganizationIDs {
		if !m.orgs[id] {
			missing.OrganizationIDs = append(missing.OrganizationIDs, id)
		}
	}
	return missing, nil
}

func (m *MockRepository) Participants(_ context.Context, meetingIDs ...int64) ([]*meetingDatamodel.MeetingParticipant, error) {
	want := map[int64]bool{}
	for _, id := range meetingIDs {
		want[id] = true
	}
	var out []*meetingDatamodel.MeetingParticipant
	for _, p := range m.participants {
		if want[p.MeetingID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) GetParticipant(_ context.Context, meetingID, id int64) (*meetingDatamodel.MeetingParticipant, error) {
	p, ok := m.participants[id]
	if !ok || p.MeetingID != meetingID {
		return nil, nil
	}
	return p, nil
}

func (m *MockRepository) AddParticipant(_ context.Context, p *meetingDatamodel.MeetingParticipant) error {
	p.ID = m.id()
	m.participants[p.ID] = p
	return nil
}

func (m *MockRepository) SetAttendance(_ context.Context, meetingID, id int64, attended bool) error {
	p, ok := m.participants[id]
	if !ok || p.MeetingID != meetingID {
		return meeting.ErrParticipantNotFound
	}
	p.Attended = attended
	return nil
}

func (m *MockRepository) RemoveParticipant(_ context.Context, meetingID, id int64) error {
	p, ok := m.participants[id]
	if !ok || p.MeetingID != meetingID {
		return meeting.ErrParticipantNotFound
	}
	delete(m.participants, id)
	return nil
}

func (m *MockRepository) GetMinutes(_ context.Context, meetingID int64) (*meetingDatamodel.MeetingMinutes, error) {
	return m.minutes[meetingID], nil
}

func (m *MockRepository) CreateMinutes(_ context.Context, row *meetingDatamodel.MeetingMinutes) error {
	if _, ok := m.minutes[row.MeetingID]; ok {
		return meeting.ErrMinutesExist
	}
	row.ID = m.id()
	m.minutes[row.MeetingID] = row
	return nil
}

func (m *MockRepository) UpdateMinutes(_ context.Context, row *meetingDatamodel.MeetingMinutes) error {
	m.minutes[row.MeetingID] = row
	return nil
}

// MockPlanner records what it was asked to plan and returns one command per
// target.
type MockPlanner struct {
	calls []notification.Type
	err   error
}

func (p *MockPlanner) Plan(_ context.Context, m notification.MeetingInfo, targets []notification.Target, t notification.Type) ([]notification.Command, error) {
	p.calls = append(p.calls, t)
	if p.err != nil {
		return nil, p.err
	}
	var out []notification.Command
	for _, target := range targets {
		out = append(out, notification.Command{
			MeetingID: m.ID,
			UserID:    target.RefID,
			Type:      t,
			Message:   notification.Message(t, m),
		})
	}
	return out, nil
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func fieldsOf(err error) map[string]string {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue())
	out := map[string]string{}
	for _, fe := range appErr.FieldErrors() {
		out[fe.Field] = fe.Message
	}
	return out
}

var _ = Describe("Meeting Service", func() {
	var (
		ctx     context.Context
		repo    *MockRepository
		planner *MockPlanner
		service *meeting.Service
		clock   time.Time
	)

	validDTO := func() meeting.CreateMeetingDTO {
		return meeting.CreateMeetingDTO{
			MeetingFields: meeting.MeetingFields{
				Title:  "Giao ban tuần",
				Date:   "2026-06-15",
				Time:   strPtr("08:30"),
				HostID: 1,
			},
			Participants: []meeting.ParticipantDTO{
				{ParticipantType: "individual", UserID: int64Ptr(2)},
				{ParticipantType: "department", DepartmentID: int64Ptr(10)},
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		planner = &MockPlanner{}
		clock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = meeting.NewService(repo, planner, logger).
			WithNumbering("HOP", 5).
			WithClock(func() time.Time { return clock })
	})

	Describe("CreateMeeting", func() {
		It("numbers meetings per year in creation order", func() {
			first, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			second, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Meeting.MeetingNumber).To(Equal("HOP-2026-0001"))
			Expect(second.Meeting.MeetingNumber).To(Equal("HOP-2026-0002"))
		})

		It("uses the current year rather than the meeting date", func() {
			clock = time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
			result, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Meeting.MeetingNumber).To(Equal("HOP-2027-0001"))
		})

		It("skips numbers already taken", func() {
			repo.taken["HOP-2026-0001"] = true
			result, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Meeting.MeetingNumber).To(Equal("HOP-2026-0002"))
		})

		It("gives up after the configured retries", func() {
			for i := 1; i <= 6; i++ {
				repo.taken[numbering.Format("HOP", 2026, i)] = true
			}
			_, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(errors.Is(err, meeting.ErrMeetingNumberTaken)).To(BeTrue())
		})

		It("defaults the status and returns participants with host name", func() {
			result, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())

			m := result.Meeting
			Expect(m.Status).To(Equal(meeting.StatusScheduled))
			Expect(m.HostName).To(Equal("Nguyễn An"))
			Expect(m.CreatedByID).To(Equal(int64(1)))
			Expect(m.Participants).To(HaveLen(2))
			Expect(m.Participants[0].Type()).To(Equal(meeting.ParticipantIndividual))
			Expect(m.Participants[1].Type()).To(Equal(meeting.ParticipantDepartment))
		})

		It("plans meeting_created notifications without dispatching them", func() {
			result, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(planner.calls).To(Equal([]notification.Type{notification.TypeMeetingCreated}))
			Expect(result.Notifications).To(HaveLen(2))
			Expect(result.Notifications[0].Message).To(ContainSubstring("HOP-2026-0001"))
		})

		It("still creates the meeting when planning fails", func() {
			planner.err = errors.New("directory down")
			result, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Notifications).To(BeEmpty())
			Expect(repo.meetings).To(HaveLen(1))
		})

		It("requires an actor", func() {
			_, err := service.CreateMeeting(ctx, 0, validDTO())
			Expect(errors.Is(err, internal.ErrMissingActor)).To(BeTrue())
		})

		It("rejects an actor that is not a user and persists nothing", func() {
			_, err := service.CreateMeeting(ctx, 999, validDTO())
			Expect(errors.Is(err, internal.ErrUnknownActor)).To(BeTrue())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(401))
			Expect(repo.meetings).To(BeEmpty())
		})

		It("reports every invalid field and persists nothing", func() {
			dto := meeting.CreateMeetingDTO{
				MeetingFields: meeting.MeetingFields{Date: "2024-12-31", Time: strPtr("25:00")},
			}
			_, err := service.CreateMeeting(ctx, 1, dto)
			Expect(err).To(HaveOccurred())

			fields := fieldsOf(err)
			Expect(fields).To(HaveKeyWithValue("title", "Vui lòng nhập nội dung cuộc họp."))
			Expect(fields).To(HaveKeyWithValue("host_id", "Vui lòng chọn người chủ trì."))
			Expect(fields).To(HaveKey("date"))
			Expect(fields).To(HaveKey("time"))
			Expect(repo.meetings).To(BeEmpty())
			Expect(repo.taken).To(BeEmpty())
		})

		It("rejects a participant with a reference of another type", func() {
			dto := validDTO()
			dto.Participants = []meeting.ParticipantDTO{
				{ParticipantType: "department", DepartmentID: int64Ptr(10), UserID: int64Ptr(2)},
			}
			_, err := service.CreateMeeting(ctx, 1, dto)
			Expect(fieldsOf(err)).To(HaveKey("participants[0].user_id"))
			Expect(repo.meetings).To(BeEmpty())
		})

		It("rejects a participant without its reference", func() {
			dto := validDTO()
			dto.Participants = []meeting.ParticipantDTO{{ParticipantType: "group"}}
			_, err := service.CreateMeeting(ctx, 1, dto)
			Expect(fieldsOf(err)).To(HaveKeyWithValue("participants[0].organization_id", "Vui lòng chọn Ban/Ngành tham dự."))
		})

		It("rejects references that do not exist", func() {
			dto := validDTO()
			dto.HostID = 99
			dto.Participants = []meeting.ParticipantDTO{
				{ParticipantType: "department", DepartmentID: int64Ptr(77)},
			}
			_, err := service.CreateMeeting(ctx, 1, dto)

			fields := fieldsOf(err)
			Expect(fields).To(HaveKeyWithValue("host_id", "Người chủ trì không tồn tại."))
			Expect(fields).To(HaveKey("participants[0].department_id"))
			Expect(repo.meetings).To(BeEmpty())
		})
	})

	Describe("UpdateMeeting", func() {
		It("keeps the meeting number and plans meeting_updated", func() {
			created, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())

			update := validDTO().MeetingFields
			update.Title = "Giao ban tháng"
			update.Status = "in_progress"
			result, err := service.UpdateMeeting(ctx, created.Meeting.ID, update)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Meeting.MeetingNumber).To(Equal(created.Meeting.MeetingNumber))
			Expect(result.Meeting.Title).To(Equal("Giao ban tháng"))
			Expect(result.Meeting.Status).To(Equal(meeting.StatusInProgress))
			Expect(result.Notifications).To(HaveLen(2))
			Expect(planner.calls).To(ContainElement(notification.TypeMeetingUpdated))
		})

		It("keeps the stored status when the update omits it", func() {
			created, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())

			finish := validDTO().MeetingFields
			finish.Status = "finished"
			_, err = service.UpdateMeeting(ctx, created.Meeting.ID, finish)
			Expect(err).NotTo(HaveOccurred())

			rename := validDTO().MeetingFields
			rename.Title = "Giao ban tuần (sửa)"
			result, err := service.UpdateMeeting(ctx, created.Meeting.ID, rename)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Meeting.Status).To(Equal(meeting.StatusFinished))
			Expect(repo.meetings[created.Meeting.ID].Status).To(Equal(string(meeting.StatusFinished)))
		})

		It("returns not found for an unknown meeting", func() {
			_, err := service.UpdateMeeting(ctx, 404, validDTO().MeetingFields)
			Expect(errors.Is(err, meeting.ErrMeetingNotFound)).To(BeTrue())
		})

		It("rejects an unknown status", func() {
			created, _ := service.CreateMeeting(ctx, 1, validDTO())
			update := validDTO().MeetingFields
			update.Status = "postponed"
			_, err := service.UpdateMeeting(ctx, created.Meeting.ID, update)
			Expect(fieldsOf(err)).To(HaveKey("status"))
		})
	})

	Describe("participants", func() {
		var meetingID int64

		BeforeEach(func() {
			created, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			meetingID = created.Meeting.ID
			planner.calls = nil
		})

		It("adds a group participant and plans notifications for it only", func() {
			result, err := service.AddParticipant(ctx, 1, meetingID, meeting.ParticipantDTO{
				ParticipantType: "group", OrganizationID: int64Ptr(20),
			})
			Expect(err).NotTo(HaveOccurred())

			id, ok := result.Participant.OrganizationID()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(int64(20)))
			_, ok = result.Participant.UserID()
			Expect(ok).To(BeFalse())
			Expect(result.Notifications).To(HaveLen(1))
		})

		It("rejects a participant added by an unknown actor", func() {
			_, err := service.AddParticipant(ctx, 999, meetingID, meeting.ParticipantDTO{
				ParticipantType: "group", OrganizationID: int64Ptr(20),
			})
			Expect(errors.Is(err, internal.ErrUnknownActor)).To(BeTrue())
			Expect(planner.calls).To(BeEmpty())
		})

		It("rejects a participant already on the meeting", func() {
			_, err := service.AddParticipant(ctx, 1, meetingID, meeting.ParticipantDTO{
				ParticipantType: "individual", UserID: int64Ptr(2),
			})
			Expect(errors.Is(err, meeting.ErrDuplicateParticipant)).To(BeTrue())
		})

		It("records attendance", func() {
			m, err := service.GetMeeting(ctx, meetingID)
			Expect(err).NotTo(HaveOccurred())

			p, err := service.SetAttendance(ctx, meetingID, m.Participants[0].ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Attended).To(BeTrue())
		})

		It("removes a participant", func() {
			m, _ := service.GetMeeting(ctx, meetingID)
			Expect(service.RemoveParticipant(ctx, meetingID, m.Participants[0].ID)).To(Succeed())

			m, _ = service.GetMeeting(ctx, meetingID)
			Expect(m.Participants).To(HaveLen(1))
		})
	})

	Describe("minutes", func() {
		var meetingID int64

		BeforeEach(func() {
			created, err := service.CreateMeeting(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			meetingID = created.Meeting.ID
		})

		It("rejects minutes written by an unknown actor", func() {
			_, err := service.CreateMinutes(ctx, 999, meetingID, meeting.MinutesDTO{Content: "Nội dung"})
			Expect(errors.Is(err, internal.ErrUnknownActor)).To(BeTrue())
			Expect(repo.minutes).To(BeEmpty())
		})

		It("allows one set of minutes per meeting", func() {
			_, err := service.CreateMinutes(ctx, 1, meetingID, meeting.MinutesDTO{Content: "Nội dung"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateMinutes(ctx, 1, meetingID, meeting.MinutesDTO{Content: "Lần hai"})
			Expect(errors.Is(err, meeting.ErrMinutesExist)).To(BeTrue())
		})

		It("requires content", func() {
			_, err := service.CreateMinutes(ctx, 1, meetingID, meeting.MinutesDTO{Content: "  "})
			Expect(fieldsOf(err)).To(HaveKeyWithValue("content", "Vui lòng nhập nội dung biên bản."))
		})

		It("updates existing minutes", func() {
			_, err := service.UpdateMinutes(ctx, meetingID, meeting.MinutesDTO{Content: "x"})
			Expect(errors.Is(err, meeting.ErrMinutesNotFound)).To(BeTrue())

			_, err = service.CreateMinutes(ctx, 1, meetingID, meeting.MinutesDTO{Content: "v1"})
			Expect(err).NotTo(HaveOccurred())
			updated, err := service.UpdateMinutes(ctx, meetingID, meeting.MinutesDTO{Content: "v2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Content).To(Equal("v2"))
		})
	})

	Describe("DeleteMeeting", func() {
		It("removes the meeting", func() {
			created, _ := service.CreateMeeting(ctx, 1, validDTO())
			Expect(service.DeleteMeeting(ctx, created.Meeting.ID)).To(Succeed())

			_, err := service.GetMeeting(ctx, created.Meeting.ID)
			Expect(errors.Is(err, meeting.ErrMeetingNotFound)).To(BeTrue())
		})
	})

	Describe("UpcomingReminders", func() {
		create := func(date, at string, status string) int64 {
			dto := validDTO()
			dto.Date = date
			if at == "" {
				dto.Time = nil
			} else {
				dto.Time = strPtr(at)
			}
			dto.Status = status
			result, err := service.CreateMeeting(ctx, 1, dto)
			Expect(err).NotTo(HaveOccurred())
			return result.Meeting.ID
		}

		It("returns scheduled meetings starting inside the window", func() {
			soon := create("2026-06-15", "10:00", "scheduled")
			create("2026-06-15", "07:00", "scheduled")
			create("2026-06-15", "11:00", "cancelled")
			create("2026-06-16", "", "scheduled")

			from := time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)
			reminders, err := service.UpcomingReminders(ctx, from, from.Add(4*time.Hour))
			Expect(err).NotTo(HaveOccurred())

			Expect(reminders).To(HaveLen(1))
			Expect(reminders[0].Meeting.ID).To(Equal(soon))
			Expect(reminders[0].Targets).To(ConsistOf(
				notification.Target{Kind: notification.TargetUser, RefID: 2},
				notification.Target{Kind: notification.TargetDepartment, RefID: 10},
			))
		})

		It("treats a meeting without a time as starting at midnight", func() {
			id := create("2026-06-16", "", "scheduled")

			from := time.Date(2026, 6, 15, 23, 0, 0, 0, time.UTC)
			reminders, err := service.UpcomingReminders(ctx, from, from.Add(2*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(reminders).To(HaveLen(1))
			Expect(reminders[0].Meeting.ID).To(Equal(id))
		})
	})
})
