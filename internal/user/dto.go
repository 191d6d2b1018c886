package user

import (
	"regexp"
	"strings"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/core/common/validation"
)

var phonePattern = regexp.MustCompile(`^\+?\d{9,15}$`)

type CreateUserDTO struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (d *CreateUserDTO) Validate() *internal.AppError {
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	return validation.Struct(d)
}

type UpdateProfileDTO struct {
	ZaloID           *string `json:"zalo_id,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	ZaloNotification *bool   `json:"zalo_notification,omitempty"`
}

func (d *UpdateProfileDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("zalo_id", d.ZaloID).MaxLength(100)
	v.Field("phone_number", d.PhoneNumber).
		MaxLength(15).
		Custom(func(value interface{}) *internal.AppError {
			p, _ := value.(*string)
			if p == nil || *p == "" || phonePattern.MatchString(*p) {
				return nil
			}
			return internal.NewValidationFieldError("phone_number", "Số điện thoại không hợp lệ.", internal.ErrCodeValidationFailed)
		})
	return v.Validate()
}

type AffiliationDTO struct {
	DepartmentID   *int64  `json:"department_id,omitempty"`
	OrganizationID *int64  `json:"organization_id,omitempty"`
	Role           *string `json:"role,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// Validate requires at least one of department or organization.
func (d *AffiliationDTO) Validate() *internal.AppError {
	if d.DepartmentID == nil && d.OrganizationID == nil {
		return internal.NewValidationFieldError("department_id", "Vui lòng chọn Khoa/Phòng hoặc Ban/Ngành.", internal.ErrCodeRequired)
	}
	v := validation.NewValidator()
	v.Field("role", d.Role).MaxLength(100)
	return v.Validate()
}

type AffiliationStateDTO struct {
	IsActive bool `json:"is_active"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

type AffiliationsResponse struct {
	Affiliations []*Affiliation `json:"affiliations"`
}
