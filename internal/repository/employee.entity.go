package repository

import (
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

type EmployeeEntity struct {
	ID             int64  `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	TransporterID  string `db:"transporter_id"  gorm:"column:transporter_id;index"`
	FirstName      string `db:"first_name"      gorm:"column:first_name"`
	LastName       string `db:"last_name"       gorm:"column:last_name"`
	PhoneNumber    string `db:"phone_number"    gorm:"column:phone_number;index"`
	Type           string `db:"type"            gorm:"column:type"`
	Status         string `db:"status"          gorm:"column:status;index"`
	SchedulingNote string `db:"scheduling_note" gorm:"column:scheduling_note"`
}

func (EmployeeEntity) TableName() string {
	return "employees"
}

func toEmployeeEntity(m *model.Employee) *EmployeeEntity {
	if m == nil {
		return nil
	}
	return &EmployeeEntity{
		ID:             m.ID,
		TransporterID:  m.TransporterID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		PhoneNumber:    m.PhoneNumber,
		Type:           m.Type,
		Status:         m.Status,
		SchedulingNote: m.SchedulingNote,
	}
}

func toEmployeeModel(e *EmployeeEntity) *model.Employee {
	if e == nil {
		return nil
	}
	return &model.Employee{
		ID:             e.ID,
		TransporterID:  e.TransporterID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		PhoneNumber:    e.PhoneNumber,
		Type:           e.Type,
		Status:         e.Status,
		SchedulingNote: e.SchedulingNote,
	}
}

func toEmployeeModels(entities []*EmployeeEntity) []*model.Employee {
	if entities == nil {
		return nil
	}
	models := make([]*model.Employee, len(entities))
	for i, e := range entities {
		models[i] = toEmployeeModel(e)
	}
	return models
}
