package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	notificationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/notification"
	"github.com/frahmantamala/meeting-manager/internal/database"
	domain "github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/numbering"
	"gorm.io/gorm"
)

const insertSavepoint = "meeting_insert"

// AllocatorFunc binds a sequence allocator to the transaction that inserts
// the meeting.
type AllocatorFunc func(tx *gorm.DB) numbering.Allocator

type MeetingRepository struct {
	db       *gorm.DB
	allocate AllocatorFunc
}

// NewMeetingRepository returns a repository serving both meeting and
// attachment metadata.
func NewMeetingRepository(db *gorm.DB, allocate AllocatorFunc) *MeetingRepository {
	return &MeetingRepository{db: db, allocate: allocate}
}

var (
	_ domain.Repository     = (*MeetingRepository)(nil)
	_ domain.FileRepository = (*MeetingRepository)(nil)
)

// Create numbers and inserts the meeting in one transaction. The counter
// increment and the insert commit together. When the allocated number is
// already taken, e.g. by an imported meeting, the insert is rolled back to a
// savepoint and the next value is tried.
func (r *MeetingRepository) Create(ctx context.Context, m *meetingDatamodel.Meeting, participants []*meetingDatamodel.MeetingParticipant, policy domain.NumberPolicy) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alloc := r.allocate(tx)

		inserted := false
		for i := 0; i < attempts && !inserted; i++ {
			seq, err := alloc.Next(ctx, policy.Year)
			if err != nil {
				return err
			}

			m.ID = 0
			m.MeetingNumber = numbering.Format(policy.Prefix, policy.Year, seq)

			if err := tx.SavePoint(insertSavepoint).Error; err != nil {
				return err
			}
			err = tx.Create(m).Error
			switch {
			case err == nil:
				inserted = true
			case database.IsUniqueViolation(err):
				if err := tx.RollbackTo(insertSavepoint).Error; err != nil {
					return err
				}
			case database.IsForeignKeyViolation(err):
				return domain.ErrReferenceGone.WithCause(err)
			default:
				return err
			}
		}
		if !inserted {
			m.ID = 0
			m.MeetingNumber = ""
			return domain.ErrMeetingNumberTaken
		}

		if len(participants) == 0 {
			return nil
		}
		for _, p := range participants {
			p.MeetingID = m.ID
		}
		err := tx.Create(&participants).Error
		if database.IsForeignKeyViolation(err) {
			return domain.ErrReferenceGone.WithCause(err)
		}
		return err
	})
}

func (r *MeetingRepository) GetByID(ctx context.Context, id int64) (*meetingDatamodel.Meeting, error) {
	var m meetingDatamodel.Meeting
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Update saves editable columns only. The meeting number is never rewritten.
func (r *MeetingRepository) Update(ctx context.Context, m *meetingDatamodel.Meeting) error {
	res := r.db.WithContext(ctx).
		Model(&meetingDatamodel.Meeting{ID: m.ID}).
		Select("title", "meeting_date", "meeting_time", "preparation_id", "host_id", "location", "status", "updated_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&notificationDatamodel.Notification{},
			&meetingDatamodel.MeetingFile{},
			&meetingDatamodel.MeetingMinutes{},
			&meetingDatamodel.MeetingParticipant{},
		} {
			if err := tx.Where("meeting_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&meetingDatamodel.Meeting{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrMeetingNotFound
		}
		return nil
	})
}

// filterScope applies every supplied filter. Absent filters add nothing.
func filterScope(f domain.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Title != "" {
			db = db.Where(`LOWER(meetings.title) LIKE ? ESCAPE '\'`, likePattern(f.Title))
		}
		if f.DateFrom != nil {
			db = db.Where("meetings.meeting_date >= ?", *f.DateFrom)
		}
		if f.DateTo != nil {
			db = db.Where("meetings.meeting_date <= ?", *f.DateTo)
		}
		if f.Status != nil {
			db = db.Where("meetings.status = ?", string(*f.Status))
		}
		if f.DepartmentID != nil {
			db = db.Where(`EXISTS (SELECT 1 FROM meeting_participants mp
				WHERE mp.meeting_id = meetings.id AND mp.department_id = ?)`, *f.DepartmentID)
		}
		if f.OrganizationID != nil {
			db = db.Where(`EXISTS (SELECT 1 FROM meeting_participants mp
				WHERE mp.meeting_id = meetings.id AND mp.organization_id = ?)`, *f.OrganizationID)
		}
		if f.Search != "" {
			p := likePattern(f.Search)
			db = db.Where(`LOWER(meetings.meeting_number) LIKE ? ESCAPE '\'
				OR LOWER(meetings.title) LIKE ? ESCAPE '\'
				OR EXISTS (SELECT 1 FROM users u WHERE u.id = meetings.host_id AND (
					LOWER(u.first_name || ' ' || u.last_name) LIKE ? ESCAPE '\'
					OR LOWER(u.username) LIKE ? ESCAPE '\'))`, p, p, p, p)
		}
		return db
	}
}

func likePattern(s string) string {
	return "%" + domain.EscapeLike(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func (r *MeetingRepository) List(ctx context.Context, f domain.Filter) ([]*meetingDatamodel.Meeting, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&meetingDatamodel.Meeting{}).
		Scopes(filterScope(f)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).
		Scopes(filterScope(f)).
		Order("meetings.meeting_date DESC").
		Order("meetings.meeting_time DESC NULLS LAST").
		Order("meetings.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var meetings []*meetingDatamodel.Meeting
	if err := q.Find(&meetings).Error; err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

func (r *MeetingRepository) Scheduled(ctx context.Context, from, to time.Time) ([]*meetingDatamodel.Meeting, error) {
	var meetings []*meetingDatamodel.Meeting
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusScheduled)).
		Where("meeting_date >= ? AND meeting_date <= ?", from, to).
		Order("meeting_date ASC").
		Order("id ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *MeetingRepository) Participants(ctx context.Context, meetingIDs ...int64) ([]*meetingDatamodel.MeetingParticipant, error) {
	if len(meetingIDs) == 0 {
		return nil, nil
	}
	var participants []*meetingDatamodel.MeetingParticipant
	err := r.db.WithContext(ctx).
		Where("meeting_id IN ?", meetingIDs).
		Order("meeting_id ASC").
		Order("id ASC").
		Find(&participants).Error
	return participants, err
}

func (r *MeetingRepository) GetParticipant(ctx context.Context, meetingID, id int64) (*meetingDatamodel.MeetingParticipant, error) {
	var p meetingDatamodel.MeetingParticipant
	err := r.db.WithContext(ctx).Where("meeting_id = ? AND id = ?", meetingID, id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MeetingRepository) AddParticipant(ctx context.Context, p *meetingDatamodel.MeetingParticipant) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if database.IsForeignKeyViolation(err) {
		return domain.ErrReferenceGone.WithCause(err)
	}
	return err
}

func (r *MeetingRepository) SetAttendance(ctx context.Context, meetingID, id int64, attended bool) error {
	res := r.db.WithContext(ctx).
		Model(&meetingDatamodel.MeetingParticipant{}).
		Where("meeting_id = ? AND id = ?", meetingID, id).
		Updates(map[string]interface{}{"attended": attended, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *MeetingRepository) RemoveParticipant(ctx context.Context, meetingID, id int64) error {
	res := r.db.WithContext(ctx).
		Where("meeting_id = ? AND id = ?", meetingID, id).
		Delete(&meetingDatamodel.MeetingParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *MeetingRepository) GetMinutes(ctx context.Context, meetingID int64) (*meetingDatamodel.MeetingMinutes, error) {
	var m meetingDatamodel.MeetingMinutes
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MeetingRepository) CreateMinutes(ctx context.Context, m *meetingDatamodel.MeetingMinutes) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if database.IsUniqueViolation(err) {
		return domain.ErrMinutesExist.WithCause(err)
	}
	return err
}

func (r *MeetingRepository) UpdateMinutes(ctx context.Context, m *meetingDatamodel.MeetingMinutes) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MeetingRepository) CreateFile(ctx context.Context, f *meetingDatamodel.MeetingFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *MeetingRepository) ListFiles(ctx context.Context, meetingID int64) ([]*meetingDatamodel.MeetingFile, error) {
	var files []*meetingDatamodel.MeetingFile
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&files).Error
	return files, err
}

func (r *MeetingRepository) GetFile(ctx context.Context, meetingID, id int64) (*meetingDatamodel.MeetingFile, error) {
	var f meetingDatamodel.MeetingFile
	err := r.db.WithContext(ctx).Where("meeting_id = ? AND id = ?", meetingID, id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *MeetingRepository) DeleteFile(ctx context.Context, meetingID, id int64) error {
	res := r.db.WithContext(ctx).
		Where("meeting_id = ? AND id = ?", meetingID, id).
		Delete(&meetingDatamodel.MeetingFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
