package department

import (
	"strings"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/core/common/validation"
)

const MaxNameLength = 100

type DepartmentDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (d *DepartmentDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)

	v := validation.NewValidator()
	v.Field("name", d.Name).
		Required("Vui lòng nhập tên Khoa/Phòng.").
		MaxLength(MaxNameLength)
	return v.Validate()
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
