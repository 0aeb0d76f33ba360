package fixtures

import (
	"fmt"
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/auth"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

var TestSession = &auth.Session{
	UserID: "u-100",
	Name:   "Dana Ops",
	Role:   "dispatcher",
}

func NewTestEmployee(id int64, transporterID, phone string) *model.Employee {
	return &model.Employee{
		ID:            id,
		TransporterID: transporterID,
		FirstName:     "Driver",
		LastName:      fmt.Sprintf("%d", id),
		PhoneNumber:   phone,
		Type:          "DA",
		Status:        model.EmployeeStatusActive,
	}
}

func NewInactiveEmployee(id int64, transporterID, phone string) *model.Employee {
	e := NewTestEmployee(id, transporterID, phone)
	e.Status = model.EmployeeStatusInactive
	return e
}

func NewSendRequest(messageType, message string, recipients ...model.Recipient) model.SendRequest {
	return model.SendRequest{
		Recipients:  recipients,
		Message:     message,
		From:        "+15550000001",
		MessageType: messageType,
	}
}

func NewRecipient(phone, transporterID string, scheduleDate *time.Time) model.Recipient {
	return model.Recipient{
		Phone:         phone,
		Name:          "Driver " + transporterID,
		TransporterID: transporterID,
		ScheduleDate:  scheduleDate,
	}
}

var (
	ValidPhoneNumbers = []string{
		"+15550102030",
		"+15550102031",
		"+15550102032",
	}

	WorkingDayTypes    = []string{"Standard", "Rescue", "Training"}
	NotWorkingDayTypes = []string{"Off", "Close", "Request Off"}
)
