package meeting_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockFileRepository struct {
	files  map[int64]*meetingDatamodel.MeetingFile
	nextID int64
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{files: make(map[int64]*meetingDatamodel.MeetingFile)}
}

func (m *MockFileRepository) CreateFile(_ context.Context, f *meetingDatamodel.MeetingFile) error {
	m.nextID++
	f.ID = m.nextID
	f.UploadedAt = time.Now()
	m.files[f.ID] = f
	return nil
}

func (m *MockFileRepository) ListFiles(_ context.Context, meetingID int64) ([]*meetingDatamodel.MeetingFile, error) {
	var out []*meetingDatamodel.MeetingFile
	for _, f := range m.files {
		if f.MeetingID == meetingID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockFileRepository) GetFile(_ context.Context, meetingID, id int64) (*meetingDatamodel.MeetingFile, error) {
	f, ok := m.files[id]
	if !ok || f.MeetingID != meetingID {
		return nil, nil
	}
	return f, nil
}

func (m *MockFileRepository) DeleteFile(_ context.Context, meetingID, id int64) error {
	f, ok := m.files[id]
	if !ok || f.MeetingID != meetingID {
		return meeting.ErrFileNotFound
	}
	delete(m.files, id)
	return nil
}

var _ = Describe("Meeting files", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		files     *MockFileRepository
		store     *storage.MemoryStore
		service   *meeting.Service
		meetingID int64
	)

	upload := func(name, content string) meeting.Upload {
		return meeting.Upload{
			FileName:    name,
			ContentType: "application/pdf",
			Size:        int64(len(content)),
			Body:        strings.NewReader(content),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		files = NewMockFileRepository()
		store = storage.NewMemoryStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = meeting.NewService(repo, nil, logger).WithFiles(files, store, 16)

		created, err := service.CreateMeeting(ctx, 1, meeting.CreateMeetingDTO{
			MeetingFields: meeting.MeetingFields{Title: "Giao ban", Date: "2026-06-15", HostID: 1},
		})
		Expect(err).NotTo(HaveOccurred())
		meetingID = created.Meeting.ID
	})

	It("stores the blob under the meeting prefix and streams it back", func() {
		f, err := service.UploadFile(ctx, 1, meetingID, upload("../../bien-ban.pdf", "pdf-bytes"))
		Expect(err).NotTo(HaveOccurred())
		Expect(f.FileName).To(Equal("bien-ban.pdf"))
		Expect(f.SizeBytes).To(Equal(int64(9)))

		keys := store.Keys()
		Expect(keys).To(HaveLen(1))
		Expect(keys[0]).To(HavePrefix("meeting_files/"))
		Expect(keys[0]).To(HaveSuffix("-bien-ban.pdf"))

		meta, body, err := service.OpenFile(ctx, meetingID, f.ID)
		Expect(err).NotTo(HaveOccurred())
		defer body.Close()
		data, _ := io.ReadAll(body)
		Expect(string(data)).To(Equal("pdf-bytes"))
		Expect(meta.ContentType).To(Equal("application/pdf"))
	})

	It("enforces the size limit", func() {
		_, err := service.UploadFile(ctx, 1, meetingID, upload("big.pdf", strings.Repeat("x", 17)))
		Expect(errors.Is(err, meeting.ErrFileTooLarge)).To(BeTrue())
		Expect(store.Keys()).To(BeEmpty())
	})

	It("requires a body", func() {
		_, err := service.UploadFile(ctx, 1, meetingID, meeting.Upload{FileName: "a", Body: bytes.NewReader(nil)})
		Expect(errors.Is(err, meeting.ErrFileRequired)).To(BeTrue())
	})

	It("rejects uploads to unknown meetings", func() {
		_, err := service.UploadFile(ctx, 1, 999, upload("a.pdf", "x"))
		Expect(errors.Is(err, meeting.ErrMeetingNotFound)).To(BeTrue())
	})

	It("removes the blob with the file and with the meeting", func() {
		f, err := service.UploadFile(ctx, 1, meetingID, upload("a.pdf", "a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = service.UploadFile(ctx, 1, meetingID, upload("b.pdf", "b"))
		Expect(err).NotTo(HaveOccurred())

		Expect(service.DeleteFile(ctx, meetingID, f.ID)).To(Succeed())
		Expect(store.Keys()).To(HaveLen(1))

		Expect(service.DeleteMeeting(ctx, meetingID)).To(Succeed())
		Expect(store.Keys()).To(BeEmpty())
	})

	It("reports storage as disabled without a store", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bare := meeting.NewService(repo, nil, logger)
		_, err := bare.UploadFile(ctx, 1, meetingID, upload("a.pdf", "a"))
		Expect(errors.Is(err, meeting.ErrStorageDisabled)).To(BeTrue())
	})
})
