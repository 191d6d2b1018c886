package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/internal/numbering"
)

// NumberPolicy tells the repository how to name a new meeting.
type NumberPolicy struct {
	Prefix      string
	Year        int
	MaxAttempts int
}

// References groups ids that must exist before a meeting can point at them.
type References struct {
	UserIDs         []int64
	DepartmentIDs   []int64
	OrganizationIDs []int64
}

func (r References) empty() bool {
	return len(r.UserIDs) == 0 && len(r.DepartmentIDs) == 0 && len(r.OrganizationIDs) == 0
}

// Repository returns nil, nil from single-row lookups that find nothing.
type Repository interface {
	// Create allocates the next number for policy.Year and inserts the
	// meeting with its participants in one transaction. A collision on the
	// meeting number is retried with a fresh allocation up to
	// policy.MaxAttempts times before ErrMeetingNumberTaken is returned.
	Create(ctx context.Context, m *meetingDatamodel.Meeting, participants []*meetingDatamodel.MeetingParticipant, policy NumberPolicy) error
	GetByID(ctx context.Context, id int64) (*meetingDatamodel.Meeting, error)
	Update(ctx context.Context, m *meetingDatamodel.Meeting) error
	// Delete removes the meeting and everything hanging off it.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*meetingDatamodel.Meeting, int64, error)
	// Scheduled lists scheduled meetings dated within [from, to], both days inclusive.
	Scheduled(ctx context.Context, from, to time.Time) ([]*meetingDatamodel.Meeting, error)
	UserNames(ctx context.Context, ids []int64) (map[int64]string, error)
	MissingReferences(ctx context.Context, refs References) (References, error)

	Participants(ctx context.Context, meetingIDs ...int64) ([]*meetingDatamodel.MeetingParticipant, error)
	GetParticipant(ctx context.Context, meetingID, id int64) (*meetingDatamodel.MeetingParticipant, error)
	AddParticipant(ctx context.Context, p *meetingDatamodel.MeetingParticipant) error
	SetAttendance(ctx context.Context, meetingID, id int64, attended bool) error
	RemoveParticipant(ctx context.Context, meetingID, id int64) error

	GetMinutes(ctx context.Context, meetingID int64) (*meetingDatamodel.MeetingMinutes, error)
	// CreateMinutes reports ErrMinutesExist when the meeting already has minutes.
	CreateMinutes(ctx context.Context, m *meetingDatamodel.MeetingMinutes) error
	UpdateMinutes(ctx context.Context, m *meetingDatamodel.MeetingMinutes) error
}

// NotificationPlanner turns a meeting change into pending notifications.
type NotificationPlanner interface {
	Plan(ctx context.Context, m notification.MeetingInfo, targets []notification.Target, t notification.Type) ([]notification.Command, error)
}

// CreateResult is a persisted meeting plus the notifications its creation
// calls for. Dispatching them is left to the caller.
type CreateResult struct {
	Meeting       *Meeting
	Notifications []notification.Command
}

type ParticipantResult struct {
	Participant   Participant
	Notifications []notification.Command
}

type Service struct {
	repo           Repository
	files          FileRepository
	store          FileStore
	planner        NotificationPlanner
	prefix         string
	maxAttempts    int
	maxUploadBytes int64
	now            func() time.Time
	logger         *slog.Logger
}

func NewService(repo Repository, planner NotificationPlanner, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		planner:     planner,
		prefix:      numbering.DefaultPrefix,
		maxAttempts: 6,
		now:         time.Now,
		logger:      logger,
	}
}

// WithNumbering sets the number prefix and how many collisions are retried.
func (s *Service) WithNumbering(prefix string, maxRetries int) *Service {
	if prefix != "" {
		s.prefix = prefix
	}
	if maxRetries >= 0 {
		s.maxAttempts = maxRetries + 1
	}
	return s
}

func (s *Service) WithFiles(files FileRepository, store FileStore, maxUploadBytes int64) *Service {
	s.files = files
	s.store = store
	s.maxUploadBytes = maxUploadBytes
	return s
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateMeeting(ctx context.Context, actor int64, dto CreateMeetingDTO) (*CreateResult, error) {
	if err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}

	fields, participants, errs := dto.validate()
	if errs.Empty() {
		errs.Merge(s.checkReferences(ctx, &fields, participants, "participants[%d]."))
	}
	if err := errs.Err(); err != nil {
		s.logger.Info("meeting validation failed", "actor", actor, "fields", len(errs.Errors))
		return nil, err
	}

	m := &Meeting{CreatedByID: actor, Status: StatusScheduled}
	m.apply(fields)
	row := ToDataModel(m)

	rows := make([]*meetingDatamodel.MeetingParticipant, 0, len(participants))
	for _, p := range participants {
		p.CreatedByID = actor
		rows = append(rows, participantToDataModel(p))
	}

	policy := NumberPolicy{Prefix: s.prefix, Year: s.now().Year(), MaxAttempts: s.maxAttempts}
	if err := s.repo.Create(ctx, row, rows, policy); err != nil {
		s.logger.Error("failed to create meeting", "error", err, "actor", actor)
		return nil, err
	}

	created := FromDataModel(row)
	for _, r := range rows {
		created.Participants = append(created.Participants, participantFromDataModel(r))
	}
	s.fillHostNames(ctx, created)

	s.logger.Info("meeting created",
		"meeting_id", created.ID,
		"meeting_number", created.MeetingNumber,
		"participants", len(created.Participants))

	return &CreateResult{
		Meeting:       created,
		Notifications: s.plan(ctx, created, created.Participants, notification.TypeMeetingCreated),
	}, nil
}

// UpdateMeeting replaces the editable fields. The meeting number is kept.
func (s *Service) UpdateMeeting(ctx context.Context, id int64, dto UpdateMeetingDTO) (*CreateResult, error) {
	row, err := s.requireMeeting(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, errs := dto.validate()
	if errs.Empty() {
		errs.Merge(s.checkReferences(ctx, &fields, nil, ""))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	m := FromDataModel(row)
	m.apply(fields)
	updated := ToDataModel(m)
	if err := s.repo.Update(ctx, updated); err != nil {
		s.logger.Error("failed to update meeting", "error", err, "meeting_id", id)
		return nil, err
	}

	result := FromDataModel(updated)
	if err := s.loadParticipants(ctx, result); err != nil {
		return nil, err
	}
	s.fillHostNames(ctx, result)

	s.logger.Info("meeting updated", "meeting_id", id, "meeting_number", result.MeetingNumber)
	return &CreateResult{
		Meeting:       result,
		Notifications: s.plan(ctx, result, result.Participants, notification.TypeMeetingUpdated),
	}, nil
}

func (s *Service) GetMeeting(ctx context.Context, id int64) (*Meeting, error) {
	row, err := s.requireMeeting(ctx, id)
	if err != nil {
		return nil, err
	}

	m := FromDataModel(row)
	if err := s.loadParticipants(ctx, m); err != nil {
		return nil, err
	}
	s.fillHostNames(ctx, m)
	return m, nil
}

// DeleteMeeting removes the meeting with its participants, minutes, files
// and notifications. Stored blobs are removed afterwards on a best-effort basis.
func (s *Service) DeleteMeeting(ctx context.Context, id int64) error {
	if _, err := s.requireMeeting(ctx, id); err != nil {
		return err
	}

	var keys []string
	if s.files != nil {
		files, err := s.files.ListFiles(ctx, id)
		if err != nil {
			return err
		}
		for _, f := range files {
			keys = append(keys, f.ObjectKey)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete meeting", "error", err, "meeting_id", id)
		return err
	}

	s.removeBlobs(ctx, keys)
	s.logger.Info("meeting deleted", "meeting_id", id, "files", len(keys))
	return nil
}

func (s *Service) ListMeetings(ctx context.Context, f Filter) ([]*Meeting, int64, error) {
	f.Normalize()

	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list meetings", "error", err)
		return nil, 0, err
	}

	meetings := make([]*Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, FromDataModel(row))
	}
	s.fillHostNames(ctx, meetings...)
	return meetings, total, nil
}

func (s *Service) AddParticipant(ctx context.Context, actor, meetingID int64, dto ParticipantDTO) (*ParticipantResult, error) {
	if err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	row, err := s.requireMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	p, appErr := dto.parse("")
	if appErr != nil {
		return nil, appErr
	}
	if err := s.checkReferences(ctx, nil, []Participant{p}, ""); err != nil {
		return nil, err
	}

	existing, err := s.repo.Participants(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		other := participantFromDataModel(e)
		if other.Type() == p.Type() && other.RefID() == p.RefID() {
			return nil, ErrDuplicateParticipant
		}
	}

	p.MeetingID = meetingID
	p.CreatedByID = actor
	prow := participantToDataModel(p)
	if err := s.repo.AddParticipant(ctx, prow); err != nil {
		s.logger.Error("failed to add participant", "error", err, "meeting_id", meetingID)
		return nil, err
	}
	added := participantFromDataModel(prow)

	s.logger.Info("participant added", "meeting_id", meetingID, "participant_id", added.ID, "type", added.Type())
	return &ParticipantResult{
		Participant:   added,
		Notifications: s.plan(ctx, FromDataModel(row), []Participant{added}, notification.TypeMeetingCreated),
	}, nil
}

func (s *Service) RemoveParticipant(ctx context.Context, meetingID, participantID int64) error {
	if _, err := s.requireMeeting(ctx, meetingID); err != nil {
		return err
	}
	return s.repo.RemoveParticipant(ctx, meetingID, participantID)
}

func (s *Service) SetAttendance(ctx context.Context, meetingID, participantID int64, attended bool) (*Participant, error) {
	if err := s.repo.SetAttendance(ctx, meetingID, participantID, attended); err != nil {
		return nil, err
	}
	row, err := s.repo.GetParticipant(ctx, meetingID, participantID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrParticipantNotFound
	}
	p := participantFromDataModel(row)
	return &p, nil
}

// requireActor checks that the acting user exists. Every row written on
// behalf of an actor stores its id.
func (s *Service) requireActor(ctx context.Context, actor int64) error {
	if actor <= 0 {
		return internal.ErrMissingActor
	}
	missing, err := s.repo.MissingReferences(ctx, References{UserIDs: []int64{actor}})
	if err != nil {
		return internal.NewInternalError("failed to verify actor", err)
	}
	if len(missing.UserIDs) > 0 {
		s.logger.Info("unknown actor", "actor", actor)
		return internal.ErrUnknownActor
	}
	return nil
}

func (s *Service) requireMeeting(ctx context.Context, id int64) (*meetingDatamodel.Meeting, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrMeetingNotFound
	}
	return row, nil
}

func (s *Service) loadParticipants(ctx context.Context, m *Meeting) error {
	rows, err := s.repo.Participants(ctx, m.ID)
	if err != nil {
		return err
	}
	m.Participants = m.Participants[:0]
	for _, r := range rows {
		m.Participants = append(m.Participants, participantFromDataModel(r))
	}
	return nil
}

// fillHostNames is cosmetic, so lookup failures are only logged.
func (s *Service) fillHostNames(ctx context.Context, meetings ...*Meeting) {
	if len(meetings) == 0 {
		return
	}
	ids := make([]int64, 0, len(meetings))
	for _, m := range meetings {
		ids = append(ids, m.HostID)
	}
	names, err := s.repo.UserNames(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load host names", "error", err)
		return
	}
	for _, m := range meetings {
		m.HostName = names[m.HostID]
	}
}

// checkReferences reports referenced users, departments and organizations
// that do not exist. participantField formats the field prefix for the i-th
// participant.
func (s *Service) checkReferences(ctx context.Context, fields *validFields, participants []Participant, participantField string) *internal.AppError {
	var refs References
	if fields != nil {
		refs.UserIDs = append(refs.UserIDs, fields.HostID)
		if fields.PreparationID != nil {
			refs.UserIDs = append(refs.UserIDs, *fields.PreparationID)
		}
	}
	for _, p := range participants {
		switch p.Type() {
		case ParticipantIndividual:
			refs.UserIDs = append(refs.UserIDs, p.RefID())
		case ParticipantDepartment:
			refs.DepartmentIDs = append(refs.DepartmentIDs, p.RefID())
		case ParticipantGroup:
			refs.OrganizationIDs = append(refs.OrganizationIDs, p.RefID())
		}
	}
	if refs.empty() {
		return nil
	}

	missing, err := s.repo.MissingReferences(ctx, refs)
	if err != nil {
		return internal.NewInternalError("failed to verify references", err)
	}
	if missing.empty() {
		return nil
	}

	gone := func(ids []int64, id int64) bool {
		for _, x := range ids {
			if x == id {
				return true
			}
		}
		return false
	}

	var errs internal.ValidationErrors
	if fields != nil {
		if gone(missing.UserIDs, fields.HostID) {
			errs.Add("host_id", "Người chủ trì không tồn tại.", internal.ErrCodeInvalidReference)
		}
		if fields.PreparationID != nil && gone(missing.UserIDs, *fields.PreparationID) {
			errs.Add("preparation_id", "Người chuẩn bị không tồn tại.", internal.ErrCodeInvalidReference)
		}
	}
	for i, p := range participants {
		var ids []int64
		switch p.Type() {
		case ParticipantIndividual:
			ids = missing.UserIDs
		case ParticipantDepartment:
			ids = missing.DepartmentIDs
		case ParticipantGroup:
			ids = missing.OrganizationIDs
		}
		if gone(ids, p.RefID()) {
			prefix := participantField
			if prefix != "" {
				prefix = fmt.Sprintf(participantField, i)
			}
			errs.Add(prefix+p.refField(), "Thành phần tham dự không tồn tại.", internal.ErrCodeInvalidReference)
		}
	}
	return errs.Err()
}

// plan never fails the caller: the meeting change is already committed.
func (s *Service) plan(ctx context.Context, m *Meeting, participants []Participant, t notification.Type) []notification.Command {
	if s.planner == nil || len(participants) == 0 {
		return nil
	}
	commands, err := s.planner.Plan(ctx, meetingInfo(m), targetsOf(participants), t)
	if err != nil {
		s.logger.Warn("failed to plan notifications", "error", err, "meeting_id", m.ID, "type", t)
		return nil
	}
	return commands
}

func meetingInfo(m *Meeting) notification.MeetingInfo {
	return notification.MeetingInfo{
		ID:       m.ID,
		Number:   m.MeetingNumber,
		Title:    m.Title,
		Date:     m.Date,
		Time:     m.Time,
		Location: m.Location,
	}
}

func targetsOf(participants []Participant) []notification.Target {
	targets := make([]notification.Target, 0, len(participants))
	for _, p := range participants {
		targets = append(targets, notification.Target{Kind: string(p.Type()), RefID: p.RefID()})
	}
	return targets
}
