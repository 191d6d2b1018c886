package postgres

import (
	"context"
	"errors"

	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	"github.com/frahmantamala/meeting-manager/internal/database"
	domain "github.com/frahmantamala/meeting-manager/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) domain.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetAll(ctx context.Context) ([]*organization.Organization, error) {
	var organizations []*organization.Organization
	err := r.db.WithContext(ctx).Order("name ASC").Find(&organizations).Error
	return organizations, err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*organization.Organization, error) {
	var o organization.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*organization.Organization, error) {
	var o organization.Organization
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, o *organization.Organization) error {
	err := r.db.WithContext(ctx).Create(o).Error
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateName.WithCause(err)
	}
	return err
}

func (r *OrganizationRepository) Update(ctx context.Context, o *organization.Organization) error {
	err := r.db.WithContext(ctx).Save(o).Error
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateName.WithCause(err)
	}
	return err
}

func (r *OrganizationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&meetingDatamodel.MeetingParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&userDatamodel.UserAffiliation{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&organization.Organization{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrganizationNotFound
		}
		return nil
	})
}
