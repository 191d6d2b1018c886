package meeting

import (
	"fmt"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
)

type ParticipantType string

const (
	ParticipantIndividual ParticipantType = "individual"
	ParticipantDepartment ParticipantType = "department"
	ParticipantGroup      ParticipantType = "group"
)

var participantTypeLabels = map[ParticipantType]string{
	ParticipantIndividual: "Cá nhân",
	ParticipantDepartment: "Khoa/Phòng",
	ParticipantGroup:      "Ban/Đoàn thể",
}

func (t ParticipantType) Label() string {
	return participantTypeLabels[t]
}

// Participant attaches exactly one of a user, a department or an organization
// to a meeting. The kind and reference are unexported so a value can only be
// built through the constructors below, which keeps the kind and the populated
// reference in agreement.
type Participant struct {
	ID          int64
	MeetingID   int64
	IsRequired  bool
	Attended    bool
	CreatedByID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	kind  ParticipantType
	refID int64
}

func NewIndividualParticipant(userID int64) Participant {
	return Participant{kind: ParticipantIndividual, refID: userID, IsRequired: true}
}

func NewDepartmentParticipant(departmentID int64) Participant {
	return Participant{kind: ParticipantDepartment, refID: departmentID, IsRequired: true}
}

func NewGroupParticipant(organizationID int64) Participant {
	return Participant{kind: ParticipantGroup, refID: organizationID, IsRequired: true}
}

func (p Participant) Type() ParticipantType { return p.kind }

// RefID is the id of the referenced user, department or organization.
func (p Participant) RefID() int64 { return p.refID }

func (p Participant) UserID() (int64, bool) {
	return p.refID, p.kind == ParticipantIndividual
}

func (p Participant) DepartmentID() (int64, bool) {
	return p.refID, p.kind == ParticipantDepartment
}

func (p Participant) OrganizationID() (int64, bool) {
	return p.refID, p.kind == ParticipantGroup
}

// refField is the request field that carries the reference for the kind.
func (p Participant) refField() string {
	return refFieldFor(p.kind)
}

func refFieldFor(kind ParticipantType) string {
	switch kind {
	case ParticipantDepartment:
		return "department_id"
	case ParticipantGroup:
		return "organization_id"
	default:
		return "user_id"
	}
}

var missingRefMessages = map[ParticipantType]string{
	ParticipantIndividual: "Vui lòng chọn người tham dự cá nhân.",
	ParticipantDepartment: "Vui lòng chọn Khoa / Phòng tham dự.",
	ParticipantGroup:      "Vui lòng chọn Ban/Ngành tham dự.",
}

const unexpectedRefMessage = "Chỉ được khai báo thành phần phù hợp với loại tham dự đã chọn."

// ParseParticipant builds a participant from loosely typed input. The
// declared type must have its matching reference and no other reference may
// be set. An empty type means individual. Field names in the returned error
// are prefixed with prefix.
func ParseParticipant(prefix, participantType string, userID, departmentID, organizationID *int64) (Participant, *internal.AppError) {
	kind := ParticipantType(participantType)
	if kind == "" {
		kind = ParticipantIndividual
	}

	var errs internal.ValidationErrors
	if _, ok := participantTypeLabels[kind]; !ok {
		errs.Add(prefix+"participant_type", "Loại thành phần tham dự không hợp lệ.", internal.ErrCodeInvalidParticipant)
		return Participant{}, errs.Err()
	}

	refs := map[ParticipantType]*int64{
		ParticipantIndividual: userID,
		ParticipantDepartment: departmentID,
		ParticipantGroup:      organizationID,
	}

	for _, other := range []ParticipantType{ParticipantIndividual, ParticipantDepartment, ParticipantGroup} {
		if other == kind {
			continue
		}
		if refs[other] != nil {
			errs.Add(prefix+refFieldFor(other), unexpectedRefMessage, internal.ErrCodeUnexpectedRef)
		}
	}

	ref := refs[kind]
	if ref == nil || *ref <= 0 {
		errs.Add(prefix+refFieldFor(kind), missingRefMessages[kind], internal.ErrCodeInvalidParticipant)
	}

	if !errs.Empty() {
		return Participant{}, errs.Err()
	}

	return Participant{kind: kind, refID: *ref, IsRequired: true}, nil
}

func (p Participant) String() string {
	return fmt.Sprintf("%s #%d - %s", p.kind, p.refID, p.kind.Label())
}

func participantToDataModel(p Participant) *meetingDatamodel.MeetingParticipant {
	row := &meetingDatamodel.MeetingParticipant{
		ID:              p.ID,
		MeetingID:       p.MeetingID,
		ParticipantType: string(p.kind),
		IsRequired:      p.IsRequired,
		Attended:        p.Attended,
		CreatedByID:     p.CreatedByID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	ref := p.refID
	switch p.kind {
	case ParticipantIndividual:
		row.UserID = &ref
	case ParticipantDepartment:
		row.DepartmentID = &ref
	case ParticipantGroup:
		row.OrganizationID = &ref
	}
	return row
}

func participantFromDataModel(row *meetingDatamodel.MeetingParticipant) Participant {
	p := Participant{
		ID:          row.ID,
		MeetingID:   row.MeetingID,
		IsRequired:  row.IsRequired,
		Attended:    row.Attended,
		CreatedByID: row.CreatedByID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		kind:        ParticipantType(row.ParticipantType),
	}
	switch p.kind {
	case ParticipantDepartment:
		if row.DepartmentID != nil {
			p.refID = *row.DepartmentID
		}
	case ParticipantGroup:
		if row.OrganizationID != nil {
			p.refID = *row.OrganizationID
		}
	default:
		if row.UserID != nil {
			p.refID = *row.UserID
		}
	}
	return p
}

// ParticipantToDataModel exposes the row mapping to the repository package.
func ParticipantToDataModel(p Participant) *meetingDatamodel.MeetingParticipant {
	return participantToDataModel(p)
}

// ParticipantFromDataModel exposes the row mapping to the repository package.
func ParticipantFromDataModel(row *meetingDatamodel.MeetingParticipant) Participant {
	return participantFromDataModel(row)
}
