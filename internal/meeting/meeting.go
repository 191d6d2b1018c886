package meeting

import (
	"time"

	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	StatusCancelled  Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusScheduled:  "Đã lên lịch",
	StatusInProgress: "Đang diễn ra",
	StatusFinished:   "Đã kết thúc",
	StatusCancelled:  "Bị hủy",
}

// Statuses lists the allowed statuses in display order.
func Statuses() []Status {
	return []Status{StatusScheduled, StatusInProgress, StatusFinished, StatusCancelled}
}

func statusValues() []string {
	out := make([]string, 0, len(statusLabels))
	for _, s := range Statuses() {
		out = append(out, string(s))
	}
	return out
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the Vietnamese display name.
func (s Status) Label() string {
	return statusLabels[s]
}

// MinMeetingDate is the earliest date a meeting may be scheduled on.
var MinMeetingDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type Meeting struct {
	ID            int64
	MeetingNumber string
	Title         string
	Date          time.Time
	Time          *string
	PreparationID *int64
	HostID        int64
	CreatedByID   int64
	Location      *string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// populated on reads
	HostName     string
	Participants []Participant
}

// DateString renders the meeting date as YYYY-MM-DD.
func (m *Meeting) DateString() string {
	return m.Date.Format(dateLayout)
}

func (m *Meeting) TimeString() string {
	if m.Time == nil {
		return ""
	}
	return *m.Time
}

func (m *Meeting) String() string {
	if m.Time == nil {
		return m.Title + " - " + m.DateString()
	}
	return m.Title + " - " + m.DateString() + " " + *m.Time
}

// apply copies validated editable fields. The meeting number is never touched.
func (m *Meeting) apply(f validFields) {
	m.Title = f.Title
	m.Date = f.Date
	m.Time = f.Time
	m.PreparationID = f.PreparationID
	m.HostID = f.HostID
	m.Location = f.Location
	if f.Status != "" {
		m.Status = f.Status
	}
}

func ToDataModel(m *Meeting) *meetingDatamodel.Meeting {
	return &meetingDatamodel.Meeting{
		ID:            m.ID,
		MeetingNumber: m.MeetingNumber,
		Title:         m.Title,
		Date:          m.Date,
		Time:          m.Time,
		PreparationID: m.PreparationID,
		HostID:        m.HostID,
		CreatedByID:   m.CreatedByID,
		Location:      m.Location,
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func FromDataModel(m *meetingDatamodel.Meeting) *Meeting {
	return &Meeting{
		ID:            m.ID,
		MeetingNumber: m.MeetingNumber,
		Title:         m.Title,
		Date:          normalizeDate(m.Date),
		Time:          m.Time,
		PreparationID: m.PreparationID,
		HostID:        m.HostID,
		CreatedByID:   m.CreatedByID,
		Location:      m.Location,
		Status:        Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// normalizeDate drops the clock part and pins the value to UTC midnight.
func normalizeDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

type Minutes struct {
	ID          int64     `json:"id"`
	MeetingID   int64     `json:"meeting_id"`
	Content     string    `json:"content"`
	CreatedByID int64     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type File struct {
	ID           int64     `json:"id"`
	MeetingID    int64     `json:"meeting_id"`
	ObjectKey    string    `json:"-"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedByID int64     `json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
