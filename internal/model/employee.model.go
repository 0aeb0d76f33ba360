package model

import "strings"

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

type Employee struct {
	ID            int64  `json:"id"`
	TransporterID string `json:"transporter_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PhoneNumber   string `json:"phone_number"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	// SchedulingNote is employee-scoped on purpose: dispatchers keep one
	// running note per driver, not one per day.
	SchedulingNote string `json:"scheduling_note"`
}

func (e *Employee) DisplayName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
