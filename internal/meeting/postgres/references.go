package postgres

import (
	"context"

	departmentDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/department"
	organizationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	domain "github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/user"
)

func (r *MeetingRepository) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []*userDatamodel.User
	if err := r.db.WithContext(ctx).
		Select("id", "username", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = user.DisplayName(u.FirstName, u.LastName, u.Username)
	}
	return names, nil
}

// MissingReferences returns the subset of refs that has no matching row.
func (r *MeetingRepository) MissingReferences(ctx context.Context, refs domain.References) (domain.References, error) {
	var missing domain.References
	var err error

	if missing.UserIDs, err = r.missing(ctx, &userDatamodel.User{}, refs.UserIDs); err != nil {
		return missing, err
	}
	if missing.DepartmentIDs, err = r.missing(ctx, &departmentDatamodel.Department{}, refs.DepartmentIDs); err != nil {
		return missing, err
	}
	if missing.OrganizationIDs, err = r.missing(ctx, &organizationDatamodel.Organization{}, refs.OrganizationIDs); err != nil {
		return missing, err
	}
	return missing, nil
}

func (r *MeetingRepository) missing(ctx context.Context, model interface{}, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int64
	if err := r.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var out []int64
	for _, id := range ids {
		if !present[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
