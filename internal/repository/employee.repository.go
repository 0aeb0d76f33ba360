package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/pg"
)

var (
	// ErrEmployeeNotFound is returned when an employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)

type EmployeeRepository struct {
	*pg.DB
}

func NewEmployeeRepository(db *pg.DB) *EmployeeRepository {
	return &EmployeeRepository{
		db,
	}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	entity := toEmployeeEntity(e)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toEmployeeModel(entity), nil
}

// FindActiveWithTransporter returns active employees that carry a
// transporter id, the population the week generator schedules.
func (r *EmployeeRepository) FindActiveWithTransporter(ctx context.Context) ([]*model.Employee, error) {
	var entities []*EmployeeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("status = ? AND transporter_id <> ''", model.EmployeeStatusActive).
		Order("last_name, first_name").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toEmployeeModels(entities), nil
}

func (r *EmployeeRepository) FindByTransporterID(ctx context.Context, transporterID string) (*model.Employee, error) {
	var entity EmployeeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("transporter_id = ?", transporterID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return toEmployeeModel(&entity), nil
}

func (r *EmployeeRepository) FindByTransporterIDs(ctx context.Context, transporterIDs []string) ([]*model.Employee, error) {
	if len(transporterIDs) == 0 {
		return nil, nil
	}
	var entities []*EmployeeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("transporter_id IN ?", transporterIDs).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toEmployeeModels(entities), nil
}

// FindByPhone matches on the exact number first, falling back to the
// last-10-digit suffix. Provider callbacks rarely echo the number in the
// format it was stored in.
func (r *EmployeeRepository) FindByPhone(ctx context.Context, phone string) (*model.Employee, error) {
	var entity EmployeeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("phone_number = ?", phone).
		First(&entity).
		Error
	if err == nil {
		return toEmployeeModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	suffix := lastDigits(phone, 10)
	if suffix == "" {
		return nil, ErrEmployeeNotFound
	}
	err = r.Read(ctx).WithContext(ctx).
		Where("phone_number LIKE ?", "%"+suffix).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return toEmployeeModel(&entity), nil
}

// UpdateSchedulingNote writes the dispatcher's running note for one
// employee.
func (r *EmployeeRepository) UpdateSchedulingNote(ctx context.Context, employeeID int64, note string) (*model.Employee, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&EmployeeEntity{}).
		Where("id = ?", employeeID).
		Update("scheduling_note", note)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEmployeeNotFound
	}

	var entity EmployeeEntity
	if err := r.Read(ctx).WithContext(ctx).Where("id = ?", employeeID).First(&entity).Error; err != nil {
		return nil, err
	}
	return toEmployeeModel(&entity), nil
}
