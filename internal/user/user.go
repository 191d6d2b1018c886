package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
)

var (
	ErrNotFound            = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrAffiliationNotFound = internal.NewNotFoundError("affiliation not found", internal.ErrCodeAffiliationNotFound)
	ErrDuplicateUsername   = internal.NewConflictError("username already exists", internal.ErrCodeDuplicateName)
	ErrUnknownDepartment   = internal.NewValidationFieldError("department_id", "Khoa/Phòng không tồn tại.", internal.ErrCodeInvalidReference)
	ErrUnknownOrganization = internal.NewValidationFieldError("organization_id", "Ban/Ngành không tồn tại.", internal.ErrCodeInvalidReference)
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	Profile      *Profile  `json:"profile,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// Profile carries the contact data used for Zalo delivery.
type Profile struct {
	UserID           int64   `json:"user_id"`
	ZaloID           *string `json:"zalo_id,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	ZaloNotification bool    `json:"zalo_notification"`
}

// Reachable reports whether the user opted in and has a Zalo id on file.
func (p *Profile) Reachable() bool {
	return p != nil && p.ZaloNotification && p.ZaloID != nil && *p.ZaloID != ""
}

// Affiliation links a user to a department and/or an organization.
type Affiliation struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	OrganizationID *int64  `json:"organization_id,omitempty"`
	Role           *string `json:"role,omitempty"`
	IsActive       bool    `json:"is_active"`

	DepartmentName   string `json:"department_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	Label            string `json:"label"`
}

// labelFor renders "role - department, role - organization", leaving out
// the parts that are not set.
func labelFor(a *Affiliation) string {
	withRole := func(name string) string {
		if a.Role != nil && *a.Role != "" {
			return *a.Role + " - " + name
		}
		return name
	}
	var parts []string
	if a.DepartmentName != "" {
		parts = append(parts, withRole(a.DepartmentName))
	}
	if a.OrganizationName != "" {
		parts = append(parts, withRole(a.OrganizationName))
	}
	return strings.Join(parts, ", ")
}

// DisplayName joins first and last name, falling back to the username.
func DisplayName(firstName, lastName, username string) string {
	full := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if full == "" {
		return username
	}
	return full
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     DisplayName(u.FirstName, u.LastName, u.Username),
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ProfileFromDataModel(p *userDatamodel.UserProfile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		UserID:           p.UserID,
		ZaloID:           p.ZaloID,
		PhoneNumber:      p.PhoneNumber,
		ZaloNotification: p.ZaloNotification,
	}
}

func AffiliationFromDataModel(a *userDatamodel.UserAffiliation) *Affiliation {
	return &Affiliation{
		ID:             a.ID,
		UserID:         a.UserID,
		DepartmentID:   a.DepartmentID,
		OrganizationID: a.OrganizationID,
		Role:           a.Role,
		IsActive:       a.IsActive,
	}
}
