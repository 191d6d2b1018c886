package postgres

import (
	"context"
	"errors"

	departmentDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/department"
	organizationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	"github.com/frahmantamala/meeting-manager/internal/database"
	domain "github.com/frahmantamala/meeting-manager/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateWithProfile(ctx context.Context, u *userDatamodel.User, p *userDatamodel.UserProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		p.UserID = u.ID
		return tx.Create(p).Error
	})
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateUsername.WithCause(err)
	}
	return err
}

func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*userDatamodel.UserProfile, error) {
	var p userDatamodel.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, p *userDatamodel.UserProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *UserRepository) GetAffiliations(ctx context.Context, userID int64) ([]*userDatamodel.UserAffiliation, error) {
	var affiliations []*userDatamodel.UserAffiliation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&affiliations).Error
	return affiliations, err
}

// CreateAffiliation verifies the referenced department and organization in
// the same transaction as the insert.
func (r *UserRepository) CreateAffiliation(ctx context.Context, a *userDatamodel.UserAffiliation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.DepartmentID != nil {
			var n int64
			if err := tx.Model(&departmentDatamodel.Department{}).Where("id = ?", *a.DepartmentID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrUnknownDepartment
			}
		}
		if a.OrganizationID != nil {
			var n int64
			if err := tx.Model(&organizationDatamodel.Organization{}).Where("id = ?", *a.OrganizationID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrUnknownOrganization
			}
		}
		return tx.Create(a).Error
	})
}

func (r *UserRepository) SetAffiliationActive(ctx context.Context, userID, affiliationID int64, active bool) (*userDatamodel.UserAffiliation, error) {
	var a userDatamodel.UserAffiliation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userDatamodel.UserAffiliation{}).
			Where("id = ? AND user_id = ?", affiliationID, userID).
			Update("is_active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrAffiliationNotFound
		}
		return tx.Where("id = ?", affiliationID).First(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *UserRepository) ReferenceNames(ctx context.Context, departmentIDs, organizationIDs []int64) (map[int64]string, map[int64]string, error) {
	depts := map[int64]string{}
	orgs := map[int64]string{}

	if len(departmentIDs) > 0 {
		var rows []*departmentDatamodel.Department
		if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", departmentIDs).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, d := range rows {
			depts[d.ID] = d.Name
		}
	}
	if len(organizationIDs) > 0 {
		var rows []*organizationDatamodel.Organization
		if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", organizationIDs).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, o := range rows {
			orgs[o.ID] = o.Name
		}
	}
	return depts, orgs, nil
}

func (r *UserRepository) DeleteAffiliation(ctx context.Context, userID, affiliationID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", affiliationID, userID).
		Delete(&userDatamodel.UserAffiliation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAffiliationNotFound
	}
	return nil
}
