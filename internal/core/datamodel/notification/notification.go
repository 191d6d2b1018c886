package notification

import "time"

type Notification struct {
	ID        int64     `gorm:"primaryKey"`
	MeetingID int64     `gorm:"column:meeting_id;not null;index"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Type      string    `gorm:"column:type;size:40;not null"`
	Message   string    `gorm:"column:message;not null"`
	IsRead    bool      `gorm:"column:is_read"`
	SentAt    time.Time `gorm:"column:sent_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
