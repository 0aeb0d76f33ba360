package repository

import (
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

type ScheduleConfirmationEntity struct {
	ID                int64      `db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	Token             string     `db:"token"               gorm:"column:token;not null;uniqueIndex"`
	TransporterID     string     `db:"transporter_id"      gorm:"column:transporter_id;not null;index"`
	EmployeeName      string     `db:"employee_name"       gorm:"column:employee_name"`
	ScheduleDate      time.Time  `db:"schedule_date"       gorm:"column:schedule_date"`
	YearWeek          string     `db:"year_week"           gorm:"column:year_week"`
	MessageType       string     `db:"message_type"        gorm:"column:message_type"`
	MessageLogID      *int64     `db:"message_log_id"      gorm:"column:message_log_id;index"`
	Status            string     `db:"status"              gorm:"column:status;not null;index"`
	ExpiresAt         time.Time  `db:"expires_at"          gorm:"column:expires_at;not null"`
	ConfirmedAt       *time.Time `db:"confirmed_at"        gorm:"column:confirmed_at"`
	ChangeRequestedAt *time.Time `db:"change_requested_at" gorm:"column:change_requested_at"`
	ChangeRemarks     string     `db:"change_remarks"      gorm:"column:change_remarks"`
	CreatedAt         time.Time  `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
}

func (ScheduleConfirmationEntity) TableName() string {
	return "schedule_confirmations"
}

func toConfirmationEntity(m *model.ScheduleConfirmation) *ScheduleConfirmationEntity {
	if m == nil {
		return nil
	}
	return &ScheduleConfirmationEntity{
		ID:                m.ID,
		Token:             m.Token,
		TransporterID:     m.TransporterID,
		EmployeeName:      m.EmployeeName,
		ScheduleDate:      m.ScheduleDate,
		YearWeek:          m.YearWeek,
		MessageType:       m.MessageType,
		MessageLogID:      m.MessageLogID,
		Status:            string(m.Status),
		ExpiresAt:         m.ExpiresAt,
		ConfirmedAt:       m.ConfirmedAt,
		ChangeRequestedAt: m.ChangeRequestedAt,
		ChangeRemarks:     m.ChangeRemarks,
		CreatedAt:         m.CreatedAt,
	}
}

func toConfirmationModel(e *ScheduleConfirmationEntity) *model.ScheduleConfirmation {
	if e == nil {
		return nil
	}
	return &model.ScheduleConfirmation{
		ID:                e.ID,
		Token:             e.Token,
		TransporterID:     e.TransporterID,
		EmployeeName:      e.EmployeeName,
		ScheduleDate:      e.ScheduleDate,
		YearWeek:          e.YearWeek,
		MessageType:       e.MessageType,
		MessageLogID:      e.MessageLogID,
		Status:            model.ConfirmationStatus(e.Status),
		ExpiresAt:         e.ExpiresAt,
		ConfirmedAt:       e.ConfirmedAt,
		ChangeRequestedAt: e.ChangeRequestedAt,
		ChangeRemarks:     e.ChangeRemarks,
		CreatedAt:         e.CreatedAt,
	}
}
