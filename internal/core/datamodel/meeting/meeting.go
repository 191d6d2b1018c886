package meeting

import "time"

type Meeting struct {
	ID            int64     `gorm:"primaryKey"`
	MeetingNumber string    `gorm:"column:meeting_number;size:20;uniqueIndex;not null"`
	Title         string    `gorm:"column:title;size:255;not null"`
	Date          time.Time `gorm:"column:meeting_date;type:date;not null;index"`
	Time          *string   `gorm:"column:meeting_time;size:5"`
	PreparationID *int64    `gorm:"column:preparation_id"`
	HostID        int64     `gorm:"column:host_id;not null;index"`
	CreatedByID   int64     `gorm:"column:created_by_id;not null"`
	Location      *string   `gorm:"column:location;size:255"`
	Status        string    `gorm:"column:status;size:20;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Meeting) TableName() string {
	return "meetings"
}

type MeetingParticipant struct {
	ID              int64     `gorm:"primaryKey"`
	MeetingID       int64     `gorm:"column:meeting_id;not null;index"`
	ParticipantType string    `gorm:"column:participant_type;size:20;not null"`
	UserID          *int64    `gorm:"column:user_id;index"`
	DepartmentID    *int64    `gorm:"column:department_id;index"`
	OrganizationID  *int64    `gorm:"column:organization_id;index"`
	IsRequired      bool      `gorm:"column:is_required"`
	Attended        bool      `gorm:"column:attended"`
	CreatedByID     int64     `gorm:"column:created_by_id;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MeetingParticipant) TableName() string {
	return "meeting_participants"
}

type MeetingFile struct {
	ID           int64     `gorm:"primaryKey"`
	MeetingID    int64     `gorm:"column:meeting_id;not null;index"`
	ObjectKey    string    `gorm:"column:object_key;size:512;not null"`
	FileName     string    `gorm:"column:file_name;size:255;not null"`
	ContentType  string    `gorm:"column:content_type;size:255"`
	SizeBytes    int64     `gorm:"column:size_bytes"`
	UploadedByID int64     `gorm:"column:uploaded_by_id;not null"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;autoCreateTime"`
}

func (MeetingFile) TableName() string {
	return "meeting_files"
}

type MeetingMinutes struct {
	ID          int64     `gorm:"primaryKey"`
	MeetingID   int64     `gorm:"column:meeting_id;uniqueIndex;not null"`
	Content     string    `gorm:"column:content;not null"`
	CreatedByID int64     `gorm:"column:created_by_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MeetingMinutes) TableName() string {
	return "meeting_minutes"
}

// MeetingSequence is the per-year counter behind meeting numbers.
type MeetingSequence struct {
	Year      int `gorm:"column:year;primaryKey;autoIncrement:false"`
	LastValue int `gorm:"column:last_value;not null"`
}

func (MeetingSequence) TableName() string {
	return "meeting_sequences"
}
