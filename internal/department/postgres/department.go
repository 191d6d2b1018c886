package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/department"
	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	"github.com/frahmantamala/meeting-manager/internal/database"
	domain "github.com/frahmantamala/meeting-manager/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) domain.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateName.WithCause(err)
	}
	return err
}

func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) error {
	err := r.db.WithContext(ctx).Save(d).Error
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateName.WithCause(err)
	}
	return err
}

// Delete checks for referencing participants and deletes inside one
// transaction so a participant added concurrently cannot slip between them.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&meetingDatamodel.MeetingParticipant{}).
			Where("department_id = ?", id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrDepartmentInUse
		}

		if err := tx.Where("department_id = ?", id).Delete(&userDatamodel.UserAffiliation{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&department.Department{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrDepartmentNotFound
		}
		return nil
	})
	if database.IsForeignKeyViolation(err) {
		return domain.ErrDepartmentInUse.WithCause(err)
	}
	return err
}
