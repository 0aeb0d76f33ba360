package repository

import (
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

type ScheduleEntryEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	EmployeeID    int64     `db:"employee_id"    gorm:"column:employee_id;index"`
	TransporterID string    `db:"transporter_id" gorm:"column:transporter_id;not null;uniqueIndex:idx_transporter_date,priority:1"`
	Date          time.Time `db:"date"           gorm:"column:date;not null;uniqueIndex:idx_transporter_date,priority:2"`
	YearWeek      string    `db:"year_week"      gorm:"column:year_week;not null;index"`
	WeekDay       string    `db:"week_day"       gorm:"column:week_day"`
	Type          string    `db:"type"           gorm:"column:type;not null"`
	SubType       string    `db:"sub_type"       gorm:"column:sub_type"`
	Status        string    `db:"status"         gorm:"column:status;not null;index"`
	ShiftTime     string    `db:"shift_time"     gorm:"column:shift_time"`
	Van           string    `db:"van"            gorm:"column:van"`
	Note          string    `db:"note"           gorm:"column:note"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `db:"updated_at"     gorm:"column:updated_at;autoUpdateTime"`

	Confirmations []*ConfirmationRecordEntity `gorm:"foreignKey:ScheduleEntryID"`
}

func (ScheduleEntryEntity) TableName() string {
	return "schedule_entries"
}

// ConfirmationRecordEntity rows are append-only; nothing ever updates or
// deletes them.
type ConfirmationRecordEntity struct {
	ID                int64     `db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	ScheduleEntryID   int64     `db:"schedule_entry_id"   gorm:"column:schedule_entry_id;not null;index"`
	Channel           string    `db:"channel"             gorm:"column:channel;not null;index"`
	Status            string    `db:"status"              gorm:"column:status;not null"`
	Reply             string    `db:"reply"               gorm:"column:reply"`
	CreatedAt         time.Time `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
	CreatedBy         string    `db:"created_by"          gorm:"column:created_by"`
	MessageLogID      *int64    `db:"message_log_id"      gorm:"column:message_log_id;index"`
	ProviderMessageID string    `db:"provider_message_id" gorm:"column:provider_message_id;index"`
}

func (ConfirmationRecordEntity) TableName() string {
	return "schedule_confirmation_records"
}

// ScheduleWeekEntity registers which weeks the generator has opened.
type ScheduleWeekEntity struct {
	ID        int64     `db:"id"        gorm:"primaryKey;autoIncrement;column:id"`
	YearWeek  string    `db:"year_week" gorm:"column:year_week;not null;uniqueIndex"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ScheduleWeekEntity) TableName() string {
	return "schedule_weeks"
}

func toScheduleEntryEntity(m *model.ScheduleEntry) *ScheduleEntryEntity {
	if m == nil {
		return nil
	}
	return &ScheduleEntryEntity{
		ID:            m.ID,
		EmployeeID:    m.EmployeeID,
		TransporterID: m.TransporterID,
		Date:          m.Date,
		YearWeek:      m.YearWeek,
		WeekDay:       m.WeekDay,
		Type:          m.Type,
		SubType:       m.SubType,
		Status:        string(m.Status),
		ShiftTime:     m.ShiftTime,
		Van:           m.Van,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toScheduleEntryModel(e *ScheduleEntryEntity) *model.ScheduleEntry {
	if e == nil {
		return nil
	}
	return &model.ScheduleEntry{
		ID:            e.ID,
		EmployeeID:    e.EmployeeID,
		TransporterID: e.TransporterID,
		Date:          e.Date,
		YearWeek:      e.YearWeek,
		WeekDay:       e.WeekDay,
		Type:          e.Type,
		SubType:       e.SubType,
		Status:        model.EntryStatus(e.Status),
		ShiftTime:     e.ShiftTime,
		Van:           e.Van,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Confirmations: toConfirmationRecordModels(e.Confirmations),
	}
}

func toScheduleEntryModels(entities []*ScheduleEntryEntity) []*model.ScheduleEntry {
	if entities == nil {
		return nil
	}
	models := make([]*model.ScheduleEntry, len(entities))
	for i, e := range entities {
		models[i] = toScheduleEntryModel(e)
	}
	return models
}

func toConfirmationRecordEntity(m *model.ConfirmationRecord) *ConfirmationRecordEntity {
	if m == nil {
		return nil
	}
	return &ConfirmationRecordEntity{
		ID:                m.ID,
		ScheduleEntryID:   m.ScheduleEntryID,
		Channel:           m.Channel,
		Status:            m.Status,
		Reply:             m.Reply,
		CreatedAt:         m.CreatedAt,
		CreatedBy:         m.CreatedBy,
		MessageLogID:      m.MessageLogID,
		ProviderMessageID: m.ProviderMessageID,
	}
}

func toConfirmationRecordModel(e *ConfirmationRecordEntity) *model.ConfirmationRecord {
	if e == nil {
		return nil
	}
	return &model.ConfirmationRecord{
		ID:                e.ID,
		ScheduleEntryID:   e.ScheduleEntryID,
		Channel:           e.Channel,
		Status:            e.Status,
		Reply:             e.Reply,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
		MessageLogID:      e.MessageLogID,
		ProviderMessageID: e.ProviderMessageID,
	}
}

func toConfirmationRecordModels(entities []*ConfirmationRecordEntity) []*model.ConfirmationRecord {
	if entities == nil {
		return nil
	}
	models := make([]*model.ConfirmationRecord, len(entities))
	for i, e := range entities {
		models[i] = toConfirmationRecordModel(e)
	}
	return models
}
