package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/pg"
)

var (
	// ErrScheduleNotFound is returned when a schedule entry does not exist.
	ErrScheduleNotFound = errors.New("schedule entry not found")
)

type ScheduleRepository struct {
	*pg.DB
}

func NewScheduleRepository(db *pg.DB) *ScheduleRepository {
	return &ScheduleRepository{
		db,
	}
}

func (r *ScheduleRepository) Create(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleEntry, error) {
	entity := toScheduleEntryEntity(entry)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toScheduleEntryModel(entity), nil
}

// CreateIfAbsent inserts the entry unless a row already exists for its
// (transporter_id, date) pair. The second return reports whether a row was
// written; an existing row is never touched.
func (r *ScheduleRepository) CreateIfAbsent(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleEntry, bool, error) {
	entity := toScheduleEntryEntity(entry)

	res := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transporter_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(entity)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return toScheduleEntryModel(entity), true, nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*model.ScheduleEntry, error) {
	var entity ScheduleEntryEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Confirmations").
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return toScheduleEntryModel(&entity), nil
}

func (r *ScheduleRepository) FindByWeek(ctx context.Context, yearWeek string) ([]*model.ScheduleEntry, error) {
	var entities []*ScheduleEntryEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Confirmations").
		Where("year_week = ?", yearWeek).
		Order("transporter_id, date").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toScheduleEntryModels(entities), nil
}

// TransportersWithEntries returns the distinct transporter ids that
// already have rows in the given week.
func (r *ScheduleRepository) TransportersWithEntries(ctx context.Context, yearWeek string) ([]string, error) {
	var ids []string
	err := r.Read(ctx).WithContext(ctx).
		Model(&ScheduleEntryEntity{}).
		Distinct("transporter_id").
		Where("year_week = ?", yearWeek).
		Pluck("transporter_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ScheduleRepository) FindByTransporterAndDate(ctx context.Context, transporterID string, date time.Time) (*model.ScheduleEntry, error) {
	var entity ScheduleEntryEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Confirmations").
		Where("transporter_id = ? AND date = ?", transporterID, date).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return toScheduleEntryModel(&entity), nil
}

// FindLatestByTransporter returns the transporter's most recent entry
// regardless of week. Webhook reconciliation lands on this row when no
// specific date is known.
func (r *ScheduleRepository) FindLatestByTransporter(ctx context.Context, transporterID string) (*model.ScheduleEntry, error) {
	var entity ScheduleEntryEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Confirmations").
		Where("transporter_id = ?", transporterID).
		Order("date DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return toScheduleEntryModel(&entity), nil
}

// UpdateType sets the work type and status of one entry.
func (r *ScheduleRepository) UpdateType(ctx context.Context, id int64, dayType string, status model.EntryStatus) (*model.ScheduleEntry, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ScheduleEntryEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"type":   dayType,
			"status": string(status),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrScheduleNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id int64, status model.EntryStatus) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ScheduleEntryEntity{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// AppendConfirmationRecord adds one sub-record to an entry's channel
// trail. Earlier records are left untouched.
func (r *ScheduleRepository) AppendConfirmationRecord(ctx context.Context, rec *model.ConfirmationRecord) (*model.ConfirmationRecord, error) {
	entity := toConfirmationRecordEntity(rec)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toConfirmationRecordModel(entity), nil
}

// RegisterWeek records that a week has been opened. Re-registering is a
// no-op.
func (r *ScheduleRepository) RegisterWeek(ctx context.Context, yearWeek string) error {
	entity := &ScheduleWeekEntity{YearWeek: yearWeek}
	return r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year_week"}},
			DoNothing: true,
		}).
		Create(entity).
		Error
}

// ListWeeks returns registered weeks, newest first.
func (r *ScheduleRepository) ListWeeks(ctx context.Context) ([]string, error) {
	var weeks []string
	err := r.Read(ctx).WithContext(ctx).
		Model(&ScheduleWeekEntity{}).
		Order("year_week DESC").
		Pluck("year_week", &weeks).
		Error
	if err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *ScheduleRepository) LatestWeek(ctx context.Context) (string, error) {
	var entity ScheduleWeekEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("year_week DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return entity.YearWeek, nil
}
