// Package notification plans, records and delivers meeting notifications.
// Meeting operations return planned commands; the caller hands them to a
// Dispatcher once the meeting change is committed.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	notificationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/notification"
)

var ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)

type Type string

const (
	TypeMeetingCreated  Type = "meeting_created"
	TypeMeetingUpdated  Type = "meeting_updated"
	TypeMeetingReminder Type = "meeting_reminder"
)

var typeLabels = map[Type]string{
	TypeMeetingCreated:  "Cuộc họp mới",
	TypeMeetingUpdated:  "Cập nhật cuộc họp",
	TypeMeetingReminder: "Nhắc nhở cuộc họp",
}

func (t Type) Label() string {
	return typeLabels[t]
}

func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Target kinds mirror participant types.
const (
	TargetUser         = "individual"
	TargetDepartment   = "department"
	TargetOrganization = "group"
)

// Target names who should hear about a meeting: a user directly, or every
// active member of a department or organization.
type Target struct {
	Kind  string
	RefID int64
}

// MeetingInfo is the part of a meeting a notification message needs.
type MeetingInfo struct {
	ID       int64
	Number   string
	Title    string
	Date     time.Time
	Time     *string
	Location *string
}

// Reminder pairs an upcoming meeting with its participant targets.
type Reminder struct {
	Meeting MeetingInfo
	Targets []Target
}

// Command is one pending notification for one user. ZaloID is set only when
// the user opted in to Zalo and has an id on file.
type Command struct {
	MeetingID int64   `json:"meeting_id"`
	UserID    int64   `json:"user_id"`
	ZaloID    *string `json:"zalo_id,omitempty"`
	Type      Type    `json:"type"`
	Message   string  `json:"message"`
}

func (c Command) Deliverable() bool {
	return c.ZaloID != nil && *c.ZaloID != ""
}

type Notification struct {
	ID        int64     `json:"id"`
	MeetingID int64     `json:"meeting_id"`
	UserID    int64     `json:"user_id"`
	Type      Type      `json:"type"`
	TypeLabel string    `json:"type_label"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	SentAt    time.Time `json:"sent_at"`
}

// Message renders the Vietnamese notification text for a meeting.
func Message(t Type, m MeetingInfo) string {
	var b strings.Builder
	b.WriteString(t.Label())
	b.WriteString(": ")
	b.WriteString(m.Title)
	if m.Number != "" {
		fmt.Fprintf(&b, " (%s)", m.Number)
	}
	b.WriteString(" - ngày ")
	b.WriteString(m.Date.Format("02/01/2006"))
	if m.Time != nil && *m.Time != "" {
		b.WriteString(" lúc ")
		b.WriteString(*m.Time)
	}
	if m.Location != nil && *m.Location != "" {
		b.WriteString(" tại ")
		b.WriteString(*m.Location)
	}
	return b.String()
}

func ToDataModel(c Command) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		MeetingID: c.MeetingID,
		UserID:    c.UserID,
		Type:      string(c.Type),
		Message:   c.Message,
	}
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        n.ID,
		MeetingID: n.MeetingID,
		UserID:    n.UserID,
		Type:      Type(n.Type),
		TypeLabel: Type(n.Type).Label(),
		Message:   n.Message,
		IsRead:    n.IsRead,
		SentAt:    n.SentAt,
	}
}
