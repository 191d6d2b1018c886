package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;size:150;uniqueIndex;not null"`
	Email        string    `gorm:"column:email;size:254"`
	FirstName    string    `gorm:"column:first_name;size:150"`
	LastName     string    `gorm:"column:last_name;size:150"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type UserProfile struct {
	ID               int64   `gorm:"primaryKey"`
	UserID           int64   `gorm:"column:user_id;uniqueIndex;not null"`
	ZaloID           *string `gorm:"column:zalo_id;size:100"`
	PhoneNumber      *string `gorm:"column:phone_number;size:15"`
	ZaloNotification bool    `gorm:"column:zalo_notification"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

type UserAffiliation struct {
	ID             int64   `gorm:"primaryKey"`
	UserID         int64   `gorm:"column:user_id;index;not null"`
	DepartmentID   *int64  `gorm:"column:department_id;index"`
	OrganizationID *int64  `gorm:"column:organization_id;index"`
	Role           *string `gorm:"column:role;size:100"`
	IsActive       bool    `gorm:"column:is_active"`
}

func (UserAffiliation) TableName() string {
	return "user_affiliations"
}
