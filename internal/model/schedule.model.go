package model

import (
	"errors"
	"strings"
	"time"
)

// EntryStatus is the lifecycle state of a schedule day.
type EntryStatus string

const (
	EntryStatusOff             EntryStatus = "Off"
	EntryStatusScheduled       EntryStatus = "Scheduled"
	EntryStatusConfirmed       EntryStatus = "Confirmed"
	EntryStatusChangeRequested EntryStatus = "Change Requested"
)

// Confirmation channels. Each outbound message type maps to one channel
// array on the schedule row.
const (
	ChannelDayBefore = "day_before"
	ChannelDayOf     = "day_of"
	ChannelWeek      = "week"
)

// ConfirmationRecordStatus values for channel sub-records.
const (
	RecordStatusSent      = "sent"
	RecordStatusDelivered = "delivered"
	RecordStatusReceived  = "received"
)

type ScheduleEntry struct {
	ID            int64       `json:"id"`
	EmployeeID    int64       `json:"employee_id"`
	TransporterID string      `json:"transporter_id"`
	Date          time.Time   `json:"date"`
	YearWeek      string      `json:"year_week"`
	WeekDay       string      `json:"week_day"`
	Type          string      `json:"type"`
	SubType       string      `json:"sub_type"`
	Status        EntryStatus `json:"status"`
	ShiftTime     string      `json:"shift_time"`
	Van           string      `json:"van"`
	Note          string      `json:"note"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Confirmations []*ConfirmationRecord `json:"confirmations"`
}

// ConfirmationRecord is one append-only entry in a channel's confirmation
// trail. Records accumulate and are never rewritten.
type ConfirmationRecord struct {
	ID                int64     `json:"id"`
	ScheduleEntryID   int64     `json:"schedule_entry_id"`
	Channel           string    `json:"channel"`
	Status            string    `json:"status"`
	Reply             string    `json:"reply,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	CreatedBy         string    `json:"created_by"`
	MessageLogID      *int64    `json:"message_log_id,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
}

// notWorkingTypes is the set of day types that do not count as work.
var notWorkingTypes = map[string]struct{}{
	"off":         {},
	"close":       {},
	"request off": {},
	"":            {},
}

// IsWorkingType reports whether a day type represents a working
// assignment. Matching is case-insensitive and ignores surrounding space.
func IsWorkingType(t string) bool {
	_, notWorking := notWorkingTypes[strings.ToLower(strings.TrimSpace(t))]
	return !notWorking
}

// ChannelForMessageType maps an outbound message type to the confirmation
// channel it feeds. Unknown types carry no schedule side-effect.
func ChannelForMessageType(messageType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(messageType)) {
	case "day_before", "day-before", "daybefore":
		return ChannelDayBefore, true
	case "day_of", "day-of", "dayof":
		return ChannelDayOf, true
	case "week", "weekly":
		return ChannelWeek, true
	}
	return "", false
}

// GenerateOutcome is the per-row result of the week generator's
// insert-or-skip loop.
type GenerateOutcome string

const (
	OutcomeCreated GenerateOutcome = "created"
	OutcomeSkipped GenerateOutcome = "skipped"
	OutcomeError   GenerateOutcome = "error"
)

type GenerateRowResult struct {
	TransporterID string          `json:"transporter_id"`
	Date          time.Time       `json:"date"`
	Outcome       GenerateOutcome `json:"outcome"`
	Error         string          `json:"error,omitempty"`
}

type GenerateResult struct {
	YearWeek          string              `json:"year_week"`
	Created           int                 `json:"created"`
	Employees         int                 `json:"employees"`
	ExistingEmployees int                 `json:"existing_employees"`
	MissingEmployees  int                 `json:"missing_employees"`
	Days              int                 `json:"days"`
	IsNewWeek         bool                `json:"is_new_week"`
	Rows              []GenerateRowResult `json:"rows,omitempty"`
}

// EmployeeWeek is one row of the weekly grid: the employee's display
// fields plus their entries indexed 0 (Sunday) through 6 (Saturday).
type EmployeeWeek struct {
	EmployeeID       int64                  `json:"employee_id"`
	TransporterID    string                 `json:"transporter_id"`
	Name             string                 `json:"name"`
	Type             string                 `json:"type"`
	Status           string                 `json:"status"`
	SchedulingNote   string                 `json:"scheduling_note"`
	Days             map[int]*ScheduleEntry `json:"days"`
	PrevWeekTrailing int                    `json:"prev_week_trailing"`
}

type WeekSchedule struct {
	YearWeek  string          `json:"year_week"`
	Dates     [7]time.Time    `json:"dates"`
	Employees []*EmployeeWeek `json:"employees"`
}

// Tagged mutation variants. The PATCH surface accepts exactly one of
// these; handlers validate before branching.

type UpdateByScheduleID struct {
	ScheduleID int64
	Type       string
}

func (u UpdateByScheduleID) Validate() error {
	if u.ScheduleID == 0 {
		return errors.New("schedule_id is required")
	}
	if strings.TrimSpace(u.Type) == "" {
		return errors.New("type is required")
	}
	return nil
}

type UpdateEmployeeNote struct {
	EmployeeID int64
	Note       string
}

func (u UpdateEmployeeNote) Validate() error {
	if u.EmployeeID == 0 {
		return errors.New("employee_id is required")
	}
	return nil
}

type UpsertByComposite struct {
	TransporterID string
	Date          time.Time
	YearWeek      string
	WeekDay       string
	Type          string
}

func (u UpsertByComposite) Validate() error {
	if strings.TrimSpace(u.TransporterID) == "" {
		return errors.New("transporter_id is required")
	}
	if u.Date.IsZero() {
		return errors.New("date is required")
	}
	if strings.TrimSpace(u.YearWeek) == "" {
		return errors.New("year_week is required")
	}
	if strings.TrimSpace(u.Type) == "" {
		return errors.New("type is required")
	}
	return nil
}
