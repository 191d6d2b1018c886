package organization

import (
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	organizationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
)

var (
	ErrOrganizationNotFound = internal.NewNotFoundError("organization not found", internal.ErrCodeOrganizationNotFound)
	ErrDuplicateName        = internal.NewConflictError("organization name already exists", internal.ErrCodeDuplicateName)
)

// Organization is a group such as a union or committee ("Ban/Ngành").
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToDataModel(o *Organization) *organizationDatamodel.Organization {
	return &organizationDatamodel.Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func FromDataModel(o *organizationDatamodel.Organization) *Organization {
	return &Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
