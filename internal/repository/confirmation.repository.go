package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/pg"
)

var (
	// ErrConfirmationNotFound is returned when no confirmation matches the token.
	ErrConfirmationNotFound = errors.New("confirmation not found")
)

type ConfirmationRepository struct {
	*pg.DB
}

func NewConfirmationRepository(db *pg.DB) *ConfirmationRepository {
	return &ConfirmationRepository{
		db,
	}
}

func (r *ConfirmationRepository) Create(ctx context.Context, c *model.ScheduleConfirmation) (*model.ScheduleConfirmation, error) {
	entity := toConfirmationEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toConfirmationModel(entity), nil
}

func (r *ConfirmationRepository) FindByToken(ctx context.Context, token string) (*model.ScheduleConfirmation, error) {
	var entity ScheduleConfirmationEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("token = ?", token).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	return toConfirmationModel(&entity), nil
}

// LinkMessageLog attaches the message log row created for the send that
// carried this confirmation link.
func (r *ConfirmationRepository) LinkMessageLog(ctx context.Context, id int64, messageLogID int64) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ScheduleConfirmationEntity{}).
		Where("id = ?", id).
		Update("message_log_id", messageLogID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConfirmationNotFound
	}
	return nil
}

// SetConfirmed stamps the confirmation. Repeat submissions overwrite the
// previous stamp, matching the endpoint's accept-and-overwrite behavior.
func (r *ConfirmationRepository) SetConfirmed(ctx context.Context, id int64, at time.Time) error {
	return r.setAction(ctx, id, map[string]interface{}{
		"status":       string(model.ConfirmationStatusConfirmed),
		"confirmed_at": at,
	})
}

func (r *ConfirmationRepository) SetChangeRequested(ctx context.Context, id int64, at time.Time, remarks string) error {
	return r.setAction(ctx, id, map[string]interface{}{
		"status":              string(model.ConfirmationStatusChangeRequested),
		"change_requested_at": at,
		"change_remarks":      remarks,
	})
}

func (r *ConfirmationRepository) setAction(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ScheduleConfirmationEntity{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConfirmationNotFound
	}
	return nil
}
