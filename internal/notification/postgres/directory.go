package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	domain "github.com/frahmantamala/meeting-manager/internal/notification"
	"gorm.io/gorm"
)

// Directory resolves notification targets through affiliations and profiles.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Recipients(ctx context.Context, targets []domain.Target) ([]domain.Recipient, error) {
	var userIDs, departmentIDs, organizationIDs []int64
	for _, t := range targets {
		switch t.Kind {
		case domain.TargetUser:
			userIDs = append(userIDs, t.RefID)
		case domain.TargetDepartment:
			departmentIDs = append(departmentIDs, t.RefID)
		case domain.TargetOrganization:
			organizationIDs = append(organizationIDs, t.RefID)
		}
	}

	db := d.db.WithContext(ctx)
	ids := map[int64]bool{}
	for _, id := range userIDs {
		ids[id] = true
	}

	if len(departmentIDs) > 0 || len(organizationIDs) > 0 {
		q := db.Model(&userDatamodel.UserAffiliation{}).Where("is_active = ?", true)
		switch {
		case len(departmentIDs) > 0 && len(organizationIDs) > 0:
			q = q.Where("department_id IN ? OR organization_id IN ?", departmentIDs, organizationIDs)
		case len(departmentIDs) > 0:
			q = q.Where("department_id IN ?", departmentIDs)
		default:
			q = q.Where("organization_id IN ?", organizationIDs)
		}

		var members []int64
		if err := q.Distinct().Pluck("user_id", &members).Error; err != nil {
			return nil, err
		}
		for _, id := range members {
			ids[id] = true
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}
	all := make([]int64, 0, len(ids))
	for id := range ids {
		all = append(all, id)
	}

	var active []int64
	if err := db.Model(&userDatamodel.User{}).
		Where("id IN ? AND is_active = ?", all, true).
		Order("id ASC").
		Pluck("id", &active).Error; err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	var profiles []userDatamodel.UserProfile
	if err := db.Where("user_id IN ?", active).Find(&profiles).Error; err != nil {
		return nil, err
	}
	byUser := make(map[int64]userDatamodel.UserProfile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	recipients := make([]domain.Recipient, 0, len(active))
	for _, id := range active {
		r := domain.Recipient{UserID: id}
		if p, ok := byUser[id]; ok {
			r.ZaloID = p.ZaloID
			r.ZaloNotification = p.ZaloNotification
		}
		recipients = append(recipients, r)
	}
	return recipients, nil
}
