package department

import (
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	departmentDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/department"
)

var (
	ErrDepartmentNotFound = internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	ErrDuplicateName      = internal.NewConflictError("department name already exists", internal.ErrCodeDuplicateName)
	ErrDepartmentInUse    = internal.NewConflictError("Không thể xóa Khoa/Phòng đang được sử dụng trong cuộc họp.", internal.ErrCodeDepartmentInUse)
)

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d *Department) String() string {
	return d.Name
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
