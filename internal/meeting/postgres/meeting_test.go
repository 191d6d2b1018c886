package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	departmentDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/department"
	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	notificationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/notification"
	organizationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	"github.com/frahmantamala/meeting-manager/internal/database"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	meetingPostgres "github.com/frahmantamala/meeting-manager/internal/meeting/postgres"
	"github.com/frahmantamala/meeting-manager/internal/numbering"
	numberingPostgres "github.com/frahmantamala/meeting-manager/internal/numbering/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestMeetingPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Meeting Postgres Suite")
}

// fixedAllocator returns values in order and repeats the last one.
type fixedAllocator struct {
	values []int
	calls  int
}

func (a *fixedAllocator) Next(context.Context, int) (int, error) {
	i := a.calls
	if i >= len(a.values) {
		i = len(a.values) - 1
	}
	a.calls++
	return a.values[i], nil
}

var _ = Describe("Meeting Repository", func() {
	var (
		ctx     context.Context
		handles *database.Handles
		db      *gorm.DB
		repo    *meetingPostgres.MeetingRepository
		host    *userDatamodel.User
		policy  meeting.NumberPolicy
	)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	strPtr := func(s string) *string { return &s }
	idPtr := func(id int64) *int64 { return &id }

	newMeeting := func(title string, date time.Time, at *string) *meetingDatamodel.Meeting {
		return &meetingDatamodel.Meeting{
			Title:       title,
			Date:        date,
			Time:        at,
			HostID:      host.ID,
			CreatedByID: host.ID,
			Status:      string(meeting.StatusScheduled),
		}
	}

	create := func(m *meetingDatamodel.Meeting, participants ...*meetingDatamodel.MeetingParticipant) *meetingDatamodel.Meeting {
		Expect(repo.Create(ctx, m, participants, policy)).To(Succeed())
		return m
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		handles, err = database.OpenSQLite("")
		Expect(err).NotTo(HaveOccurred())
		db = handles.Gorm
		repo = meetingPostgres.NewMeetingRepository(db, numberingPostgres.NewSequenceAllocator)
		policy = meeting.NumberPolicy{Prefix: "HOP", Year: 2026, MaxAttempts: 3}

		host = &userDatamodel.User{Username: "tranbinh", FirstName: "Binh", LastName: "Tran", PasswordHash: "x", IsActive: true}
		Expect(db.Create(host).Error).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(handles.Close()).To(Succeed())
	})

	Describe("Create", func() {
		It("numbers meetings sequentially within a year", func() {
			first := create(newMeeting("A", day(2026, 6, 1), nil))
			second := create(newMeeting("B", day(2026, 6, 2), nil))

			Expect(first.MeetingNumber).To(Equal("HOP-2026-0001"))
			Expect(second.MeetingNumber).To(Equal("HOP-2026-0002"))
		})

		It("restarts the sequence for a new year", func() {
			create(newMeeting("A", day(2026, 6, 1), nil))
			policy.Year = 2027
			m := create(newMeeting("B", day(2027, 1, 5), nil))
			Expect(m.MeetingNumber).To(Equal("HOP-2027-0001"))
		})

		It("skips a number taken by an imported meeting", func() {
			imported := newMeeting("Imported", day(2026, 1, 5), nil)
			imported.MeetingNumber = "HOP-2026-0001"
			Expect(db.Create(imported).Error).NotTo(HaveOccurred())

			m := create(newMeeting("New", day(2026, 6, 1), nil))
			Expect(m.MeetingNumber).To(Equal("HOP-2026-0002"))

			var count int64
			Expect(db.Model(&meetingDatamodel.Meeting{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})

		It("fails after the last attempt and leaves nothing behind", func() {
			for _, n := range []string{"HOP-2026-0001", "HOP-2026-0002", "HOP-2026-0003"} {
				imported := newMeeting("Imported", day(2026, 1, 5), nil)
				imported.MeetingNumber = n
				Expect(db.Create(imported).Error).NotTo(HaveOccurred())
			}

			err := repo.Create(ctx, newMeeting("New", day(2026, 6, 1), nil), nil, policy)
			Expect(errors.Is(err, meeting.ErrMeetingNumberTaken)).To(BeTrue())

			var seqs int64
			Expect(db.Model(&meetingDatamodel.MeetingSequence{}).Count(&seqs).Error).NotTo(HaveOccurred())
			Expect(seqs).To(BeZero())
		})

		It("retries with values from the injected allocator", func() {
			stuck := meetingPostgres.NewMeetingRepository(db, func(*gorm.DB) numbering.Allocator {
				return &fixedAllocator{values: []int{1, 1, 7}}
			})
			Expect(stuck.Create(ctx, newMeeting("A", day(2026, 6, 1), nil), nil, policy)).To(Succeed())

			m := newMeeting("B", day(2026, 6, 2), nil)
			Expect(stuck.Create(ctx, m, nil, policy)).To(Succeed())
			Expect(m.MeetingNumber).To(Equal("HOP-2026-0007"))
		})

		It("hands out distinct numbers to concurrent creations", func() {
			const n = 12
			numbers := make(chan string, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					m := newMeeting("Concurrent", day(2026, 6, 1), nil)
					Expect(repo.Create(ctx, m, nil, policy)).To(Succeed())
					numbers <- m.MeetingNumber
				}()
			}
			wg.Wait()
			close(numbers)

			seen := map[string]bool{}
			for number := range numbers {
				Expect(seen).NotTo(HaveKey(number))
				seen[number] = true
			}
			Expect(seen).To(HaveLen(n))
			Expect(seen).To(HaveKey("HOP-2026-0012"))
		})

		It("stores participants with the meeting", func() {
			m := create(newMeeting("A", day(2026, 6, 1), nil),
				&meetingDatamodel.MeetingParticipant{ParticipantType: "individual", UserID: idPtr(host.ID), CreatedByID: host.ID},
			)

			participants, err := repo.Participants(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(participants).To(HaveLen(1))
			Expect(participants[0].MeetingID).To(Equal(m.ID))
		})
	})

	Describe("Update", func() {
		It("never rewrites the meeting number", func() {
			m := create(newMeeting("A", day(2026, 6, 1), nil))
			m.MeetingNumber = "HOP-2026-9999"
			m.Title = "A2"
			Expect(repo.Update(ctx, m)).To(Succeed())

			stored, err := repo.GetByID(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.MeetingNumber).To(Equal("HOP-2026-0001"))
			Expect(stored.Title).To(Equal("A2"))
		})
	})

	Describe("List", func() {
		var dept *departmentDatamodel.Department
		var org *organizationDatamodel.Organization

		BeforeEach(func() {
			dept = &departmentDatamodel.Department{Name: "Khoa Nội"}
			Expect(db.Create(dept).Error).NotTo(HaveOccurred())
			org = &organizationDatamodel.Organization{Name: "Công đoàn"}
			Expect(db.Create(org).Error).NotTo(HaveOccurred())

			create(newMeeting("Early June", day(2025, 6, 1), strPtr("09:00")))
			create(newMeeting("Mid June morning", day(2025, 6, 15), strPtr("08:00")),
				&meetingDatamodel.MeetingParticipant{ParticipantType: "department", DepartmentID: &dept.ID, CreatedByID: host.ID})
			create(newMeeting("Mid June afternoon", day(2025, 6, 15), strPtr("14:00")),
				&meetingDatamodel.MeetingParticipant{ParticipantType: "group", OrganizationID: &org.ID, CreatedByID: host.ID})
			create(newMeeting("Mid June untimed", day(2025, 6, 15), nil))
			create(newMeeting("End June 100%", day(2025, 6, 30), strPtr("16:00")))
			cancelled := newMeeting("July", day(2025, 7, 1), strPtr("10:00"))
			cancelled.Status = string(meeting.StatusCancelled)
			create(cancelled)
		})

		titles := func(rows []*meetingDatamodel.Meeting) []string {
			out := make([]string, 0, len(rows))
			for _, r := range rows {
				out = append(out, r.Title)
			}
			return out
		}

		It("filters an inclusive date range newest first", func() {
			from, to := day(2025, 6, 1), day(2025, 6, 30)
			rows, total, err := repo.List(ctx, meeting.Filter{DateFrom: &from, DateTo: &to})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(5)))
			Expect(titles(rows)).To(Equal([]string{
				"End June 100%",
				"Mid June afternoon",
				"Mid June morning",
				"Mid June untimed",
				"Early June",
			}))
		})

		It("returns everything without filters", func() {
			rows, total, err := repo.List(ctx, meeting.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(6)))
			Expect(rows[0].Title).To(Equal("July"))
		})

		It("searches the meeting number", func() {
			rows, _, err := repo.List(ctx, meeting.Filter{Search: "hop-2026-0002"})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"Mid June morning"}))
		})

		It("searches the host name case-insensitively", func() {
			rows, total, err := repo.List(ctx, meeting.Filter{Search: "BINH TRAN"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(6)))
			Expect(rows).To(HaveLen(6))
		})

		It("folds Vietnamese letters when searching", func() {
			duc := &userDatamodel.User{Username: "ducnguyen", FirstName: "Đức", LastName: "Nguyễn", PasswordHash: "x", IsActive: true}
			Expect(db.Create(duc).Error).NotTo(HaveOccurred())
			party := newMeeting("Họp Đảng ủy", day(2026, 7, 1), nil)
			party.HostID = duc.ID
			create(party)

			for _, q := range []string{"đảng", "ĐẢNG", "họp đảng ủy"} {
				rows, _, err := repo.List(ctx, meeting.Filter{Search: q})
				Expect(err).NotTo(HaveOccurred())
				Expect(titles(rows)).To(Equal([]string{"Họp Đảng ủy"}), q)
			}

			rows, _, err := repo.List(ctx, meeting.Filter{Search: "đức"})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"Họp Đảng ủy"}))

			rows, _, err = repo.List(ctx, meeting.Filter{Title: "ĐẢNG ỦY"})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"Họp Đảng ủy"}))
		})

		It("treats LIKE wildcards in the search literally", func() {
			rows, _, err := repo.List(ctx, meeting.Filter{Search: "100%"})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"End June 100%"}))

			rows, _, err = repo.List(ctx, meeting.Filter{Title: "_"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})

		It("filters by participating department and organization", func() {
			rows, _, err := repo.List(ctx, meeting.Filter{DepartmentID: &dept.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"Mid June morning"}))

			rows, _, err = repo.List(ctx, meeting.Filter{OrganizationID: &org.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"Mid June afternoon"}))
		})

		It("combines filters with AND", func() {
			status := meeting.StatusCancelled
			rows, _, err := repo.List(ctx, meeting.Filter{Status: &status, Title: "june"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())

			rows, _, err = repo.List(ctx, meeting.Filter{Status: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(rows)).To(Equal([]string{"July"}))
		})

		It("pages with limit and offset", func() {
			rows, total, err := repo.List(ctx, meeting.Filter{Limit: 2, Offset: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(6)))
			Expect(titles(rows)).To(Equal([]string{"End June 100%", "Mid June afternoon"}))
		})
	})

	Describe("Scheduled", func() {
		It("lists scheduled meetings between two dates", func() {
			create(newMeeting("In", day(2026, 6, 15), strPtr("09:00")))
			create(newMeeting("Out", day(2026, 6, 17), nil))
			cancelled := newMeeting("Cancelled", day(2026, 6, 15), nil)
			cancelled.Status = string(meeting.StatusCancelled)
			create(cancelled)

			rows, err := repo.Scheduled(ctx, day(2026, 6, 15), day(2026, 6, 16))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Title).To(Equal("In"))
		})
	})

	Describe("participants", func() {
		It("records attendance and reports unknown participants", func() {
			m := create(newMeeting("A", day(2026, 6, 1), nil))
			p := &meetingDatamodel.MeetingParticipant{MeetingID: m.ID, ParticipantType: "individual", UserID: idPtr(host.ID), CreatedByID: host.ID}
			Expect(repo.AddParticipant(ctx, p)).To(Succeed())

			Expect(repo.SetAttendance(ctx, m.ID, p.ID, true)).To(Succeed())
			stored, err := repo.GetParticipant(ctx, m.ID, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Attended).To(BeTrue())

			err = repo.SetAttendance(ctx, m.ID+1, p.ID, true)
			Expect(errors.Is(err, meeting.ErrParticipantNotFound)).To(BeTrue())

			Expect(repo.RemoveParticipant(ctx, m.ID, p.ID)).To(Succeed())
			err = repo.RemoveParticipant(ctx, m.ID, p.ID)
			Expect(errors.Is(err, meeting.ErrParticipantNotFound)).To(BeTrue())
		})
	})

	Describe("minutes", func() {
		It("rejects a second set of minutes", func() {
			m := create(newMeeting("A", day(2026, 6, 1), nil))
			Expect(repo.CreateMinutes(ctx, &meetingDatamodel.MeetingMinutes{MeetingID: m.ID, Content: "v1", CreatedByID: host.ID})).To(Succeed())

			err := repo.CreateMinutes(ctx, &meetingDatamodel.MeetingMinutes{MeetingID: m.ID, Content: "v2", CreatedByID: host.ID})
			Expect(errors.Is(err, meeting.ErrMinutesExist)).To(BeTrue())

			stored, err := repo.GetMinutes(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Content).To(Equal("v1"))
		})
	})

	Describe("Delete", func() {
		It("removes the meeting and its dependents", func() {
			m := create(newMeeting("A", day(2026, 6, 1), nil),
				&meetingDatamodel.MeetingParticipant{ParticipantType: "individual", UserID: idPtr(host.ID), CreatedByID: host.ID})
			Expect(repo.CreateMinutes(ctx, &meetingDatamodel.MeetingMinutes{MeetingID: m.ID, Content: "x", CreatedByID: host.ID})).To(Succeed())
			Expect(repo.CreateFile(ctx, &meetingDatamodel.MeetingFile{MeetingID: m.ID, ObjectKey: "k", FileName: "a.pdf", UploadedByID: host.ID})).To(Succeed())
			Expect(db.Create(&notificationDatamodel.Notification{MeetingID: m.ID, UserID: host.ID, Type: "meeting_created", Message: "m"}).Error).NotTo(HaveOccurred())

			Expect(repo.Delete(ctx, m.ID)).To(Succeed())

			for _, model := range []interface{}{
				&meetingDatamodel.Meeting{},
				&meetingDatamodel.MeetingParticipant{},
				&meetingDatamodel.MeetingMinutes{},
				&meetingDatamodel.MeetingFile{},
				&notificationDatamodel.Notification{},
			} {
				var count int64
				Expect(db.Model(model).Count(&count).Error).NotTo(HaveOccurred())
				Expect(count).To(BeZero())
			}

			err := repo.Delete(ctx, m.ID)
			Expect(errors.Is(err, meeting.ErrMeetingNotFound)).To(BeTrue())
		})
	})

	Describe("references", func() {
		It("reports ids without a row", func() {
			dept := &departmentDatamodel.Department{Name: "Khoa Ngoại"}
			Expect(db.Create(dept).Error).NotTo(HaveOccurred())

			missing, err := repo.MissingReferences(ctx, meeting.References{
				UserIDs:         []int64{host.ID, 404},
				DepartmentIDs:   []int64{dept.ID},
				OrganizationIDs: []int64{7},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(missing.UserIDs).To(Equal([]int64{404}))
			Expect(missing.DepartmentIDs).To(BeEmpty())
			Expect(missing.OrganizationIDs).To(Equal([]int64{7}))
		})

		It("resolves display names", func() {
			names, err := repo.UserNames(ctx, []int64{host.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(HaveKeyWithValue(host.ID, "Binh Tran"))
		})
	})
})
