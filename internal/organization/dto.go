package organization

import (
	"strings"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/core/common/validation"
)

const MaxNameLength = 100

type OrganizationDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (o *OrganizationDTO) Validate() *internal.AppError {
	o.Name = strings.TrimSpace(o.Name)

	v := validation.NewValidator()
	v.Field("name", o.Name).
		Required("Vui lòng nhập tên Ban/Ngành.").
		MaxLength(MaxNameLength)
	return v.Validate()
}

type OrganizationsResponse struct {
	Organizations []*Organization `json:"organizations"`
}
