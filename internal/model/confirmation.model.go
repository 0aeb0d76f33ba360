package model

import "time"

// ConfirmationStatus is the state of a minted confirmation link.
type ConfirmationStatus string

const (
	ConfirmationStatusPending         ConfirmationStatus = "pending"
	ConfirmationStatusConfirmed       ConfirmationStatus = "confirmed"
	ConfirmationStatusChangeRequested ConfirmationStatus = "change_requested"
)

// Confirmation actions accepted by the public endpoint.
const (
	ActionConfirm       = "confirm"
	ActionChangeRequest = "change_request"
)

// ScheduleConfirmation is one single-use confirmation link tied to a
// schedule instance. Rows are never deleted; they double as the audit
// trail of who was asked to confirm what.
type ScheduleConfirmation struct {
	ID                int64              `json:"id"`
	Token             string             `json:"-"`
	TransporterID     string             `json:"transporter_id"`
	EmployeeName      string             `json:"employee_name"`
	ScheduleDate      time.Time          `json:"schedule_date"`
	YearWeek          string             `json:"year_week"`
	MessageType       string             `json:"message_type"`
	MessageLogID      *int64             `json:"message_log_id,omitempty"`
	Status            ConfirmationStatus `json:"status"`
	ExpiresAt         time.Time          `json:"expires_at"`
	ConfirmedAt       *time.Time         `json:"confirmed_at,omitempty"`
	ChangeRequestedAt *time.Time         `json:"change_requested_at,omitempty"`
	ChangeRemarks     string             `json:"change_remarks,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// Expired reports whether the link's validity window has closed. Past
// expiry no state-changing action is accepted, whatever the status.
func (c *ScheduleConfirmation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ConfirmationView is the public snapshot returned to the recipient:
// the confirmation state plus the schedule day it covers, when the row is
// still resolvable.
type ConfirmationView struct {
	EmployeeName string             `json:"employee_name"`
	Status       ConfirmationStatus `json:"status"`
	ScheduleDate time.Time          `json:"schedule_date"`
	WeekDay      string             `json:"week_day,omitempty"`
	Type         string             `json:"type,omitempty"`
	ShiftTime    string             `json:"shift_time,omitempty"`
	Van          string             `json:"van,omitempty"`
}
