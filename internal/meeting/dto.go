package meeting

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/core/common/validation"
)

// MeetingFields are the editable meeting attributes.
type MeetingFields struct {
	Title         string  `json:"title"`
	Date          string  `json:"date"`
	Time          *string `json:"time,omitempty"`
	PreparationID *int64  `json:"preparation_id,omitempty"`
	HostID        int64   `json:"host_id"`
	Location      *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Status        string  `json:"status,omitempty"`
}

type ParticipantDTO struct {
	ParticipantType string `json:"participant_type"`
	UserID          *int64 `json:"user_id,omitempty"`
	DepartmentID    *int64 `json:"department_id,omitempty"`
	OrganizationID  *int64 `json:"organization_id,omitempty"`
	IsRequired      *bool  `json:"is_required,omitempty"`
}

type CreateMeetingDTO struct {
	MeetingFields
	Participants []ParticipantDTO `json:"participants,omitempty"`
}

type UpdateMeetingDTO = MeetingFields

type AttendanceDTO struct {
	Attended bool `json:"attended"`
}

type MinutesDTO struct {
	Content string `json:"content"`
}

func (d *MinutesDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("content", strings.TrimSpace(d.Content)).Required("Vui lòng nhập nội dung biên bản.")
	return v.Validate()
}

// validFields is MeetingFields after parsing and defaulting.
type validFields struct {
	Title         string
	Date          time.Time
	Time          *string
	PreparationID *int64
	HostID        int64
	Location      *string
	Status        Status
}

// validate parses and checks the fields, collecting every failure.
func (f *MeetingFields) validate() (validFields, internal.ValidationErrors) {
	var errs internal.ValidationErrors

	f.Title = strings.TrimSpace(f.Title)
	if f.Location != nil {
		loc := strings.TrimSpace(*f.Location)
		if loc == "" {
			f.Location = nil
		} else {
			f.Location = &loc
		}
	}

	out := validFields{
		Title:         f.Title,
		PreparationID: f.PreparationID,
		HostID:        f.HostID,
		Location:      f.Location,
	}

	if err := validation.Struct(f); err != nil {
		errs.Merge(err)
	}

	date, dateErr := parseDate(f.Date)
	v := validation.NewValidator()
	v.Field("title", f.Title).Required("Vui lòng nhập nội dung cuộc họp.").MaxLength(255)
	v.Field("date", f.Date).Required("Vui lòng chọn ngày họp.")
	v.Field("date", date).
		Custom(func(interface{}) *internal.AppError {
			if f.Date != "" && dateErr != nil {
				return internal.NewValidationFieldError("date", "Ngày họp không hợp lệ.", internal.ErrCodeInvalidDate)
			}
			return nil
		}).
		NotBefore(MinMeetingDate, fmt.Sprintf("Ngày họp không được trước ngày %s.", MinMeetingDate.Format("02/01/2006")))
	v.Field("host_id", f.HostID).Required("Vui lòng chọn người chủ trì.")
	v.Field("status", f.Status).OneOf(statusValues(), "Trạng thái không hợp lệ.", internal.ErrCodeInvalidStatus)
	errs.Merge(v.Validate())
	out.Date = date

	if f.Time != nil && strings.TrimSpace(*f.Time) != "" {
		hm, err := parseTime(*f.Time)
		if err != nil {
			errs.Add("time", "Thời gian không hợp lệ.", internal.ErrCodeInvalidTime)
		} else {
			out.Time = &hm
		}
	}

	if f.PreparationID != nil && *f.PreparationID <= 0 {
		errs.Add("preparation_id", "Người chuẩn bị không hợp lệ.", internal.ErrCodeInvalidReference)
	}

	if f.Status != "" {
		out.Status = Status(f.Status)
	}

	return out, errs
}

func (p ParticipantDTO) parse(prefix string) (Participant, *internal.AppError) {
	participant, err := ParseParticipant(prefix, p.ParticipantType, p.UserID, p.DepartmentID, p.OrganizationID)
	if err != nil {
		return Participant{}, err
	}
	if p.IsRequired != nil {
		participant.IsRequired = *p.IsRequired
	}
	return participant, nil
}

// validate checks the meeting fields and every participant together.
func (d *CreateMeetingDTO) validate() (validFields, []Participant, internal.ValidationErrors) {
	fields, errs := d.MeetingFields.validate()

	participants := make([]Participant, 0, len(d.Participants))
	seen := map[string]bool{}
	for i, p := range d.Participants {
		prefix := fmt.Sprintf("participants[%d].", i)
		participant, err := p.parse(prefix)
		if err != nil {
			errs.Merge(err)
			continue
		}
		key := fmt.Sprintf("%s:%d", participant.Type(), participant.RefID())
		if seen[key] {
			errs.Add(prefix+participant.refField(), "Thành phần tham dự bị trùng lặp.", internal.ErrCodeInvalidParticipant)
			continue
		}
		seen[key] = true
		participants = append(participants, participant)
	}

	return fields, participants, errs
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// parseTime accepts HH:MM and HH:MM:SS and normalizes to HH:MM.
func parseTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{timeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time %q", raw)
}

type MeetingResponse struct {
	ID            int64                 `json:"id"`
	MeetingNumber string                `json:"meeting_number"`
	Title         string                `json:"title"`
	Date          string                `json:"date"`
	Time          *string               `json:"time,omitempty"`
	PreparationID *int64                `json:"preparation_id,omitempty"`
	HostID        int64                 `json:"host_id"`
	HostName      string                `json:"host_name,omitempty"`
	CreatedByID   int64                 `json:"created_by_id"`
	Location      *string               `json:"location,omitempty"`
	Status        Status                `json:"status"`
	StatusLabel   string                `json:"status_label"`
	Participants  []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type ParticipantResponse struct {
	ID              int64           `json:"id"`
	MeetingID       int64           `json:"meeting_id"`
	ParticipantType ParticipantType `json:"participant_type"`
	TypeLabel       string          `json:"type_label"`
	UserID          *int64          `json:"user_id,omitempty"`
	DepartmentID    *int64          `json:"department_id,omitempty"`
	OrganizationID  *int64          `json:"organization_id,omitempty"`
	IsRequired      bool            `json:"is_required"`
	Attended        bool            `json:"attended"`
	CreatedByID     int64           `json:"created_by_id"`
}

func (m *Meeting) ToResponse() MeetingResponse {
	resp := MeetingResponse{
		ID:            m.ID,
		MeetingNumber: m.MeetingNumber,
		Title:         m.Title,
		Date:          m.DateString(),
		Time:          m.Time,
		PreparationID: m.PreparationID,
		HostID:        m.HostID,
		HostName:      m.HostName,
		CreatedByID:   m.CreatedByID,
		Location:      m.Location,
		Status:        m.Status,
		StatusLabel:   m.Status.Label(),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for _, p := range m.Participants {
		resp.Participants = append(resp.Participants, p.ToResponse())
	}
	return resp
}

func (p Participant) ToResponse() ParticipantResponse {
	row := participantToDataModel(p)
	return ParticipantResponse{
		ID:              p.ID,
		MeetingID:       p.MeetingID,
		ParticipantType: p.kind,
		TypeLabel:       p.kind.Label(),
		UserID:          row.UserID,
		DepartmentID:    row.DepartmentID,
		OrganizationID:  row.OrganizationID,
		IsRequired:      p.IsRequired,
		Attended:        p.Attended,
		CreatedByID:     p.CreatedByID,
	}
}

type MeetingsResponse struct {
	Meetings []MeetingResponse `json:"meetings"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type FilesResponse struct {
	Files []*File `json:"files"`
}
