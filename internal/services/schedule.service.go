package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/auth"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/prom"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/week"
)

var (
	ErrNoActiveEmployees = errors.New("no active employees with transporter ids")
	ErrScheduleNotFound  = errors.New("schedule entry not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
)

type ScheduleRepository interface {
	Create(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleEntry, error)
	CreateIfAbsent(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleEntry, bool, error)
	FindByID(ctx context.Context, id int64) (*model.ScheduleEntry, error)
	FindByWeek(ctx context.Context, yearWeek string) ([]*model.ScheduleEntry, error)
	TransportersWithEntries(ctx context.Context, yearWeek string) ([]string, error)
	FindByTransporterAndDate(ctx context.Context, transporterID string, date time.Time) (*model.ScheduleEntry, error)
	UpdateType(ctx context.Context, id int64, dayType string, status model.EntryStatus) (*model.ScheduleEntry, error)
	RegisterWeek(ctx context.Context, yearWeek string) error
	ListWeeks(ctx context.Context) ([]string, error)
	LatestWeek(ctx context.Context) (string, error)
}

type EmployeeRepository interface {
	FindActiveWithTransporter(ctx context.Context) ([]*model.Employee, error)
	FindByTransporterID(ctx context.Context, transporterID string) (*model.Employee, error)
	FindByTransporterIDs(ctx context.Context, transporterIDs []string) ([]*model.Employee, error)
	UpdateSchedulingNote(ctx context.Context, employeeID int64, note string) (*model.Employee, error)
}

type ScheduleService struct {
	scheduleRepo ScheduleRepository
	employeeRepo EmployeeRepository
	now          func() time.Time
}

func NewScheduleService(scheduleRepo ScheduleRepository, employeeRepo EmployeeRepository) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

// Generate materializes schedule rows for one week: seven per active
// employee. Existing rows are never touched, so re-running for the same
// week only fills gaps. With no explicit week it advances the registry to
// the week after the latest generated one.
func (s *ScheduleService) Generate(ctx context.Context, session *auth.Session, yearWeek string) (*model.GenerateResult, error) {
	target, err := s.resolveTargetWeek(ctx, yearWeek)
	if err != nil {
		return nil, err
	}

	dates, err := week.Dates(target)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.FindActiveWithTransporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, ErrNoActiveEmployees
	}

	existing, err := s.scheduleRepo.TransportersWithEntries(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("load existing transporters: %w", err)
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	weeks, err := s.scheduleRepo.ListWeeks(ctx)
	if err != nil {
		return nil, err
	}
	isNewWeek := true
	for _, w := range weeks {
		if w == target {
			isNewWeek = false
			break
		}
	}

	result := &model.GenerateResult{
		YearWeek:  target,
		Employees: len(employees),
		Days:      len(dates),
		IsNewWeek: isNewWeek,
	}
	for _, e := range employees {
		if _, ok := existingSet[e.TransporterID]; ok {
			result.ExistingEmployees++
		} else {
			result.MissingEmployees++
		}
	}

	// One row per employee per day. Each row succeeds or fails on its
	// own; a bad row never aborts the rest of the week.
	for _, e := range employees {
		for _, d := range dates {
			row := model.GenerateRowResult{
				TransporterID: e.TransporterID,
				Date:          d,
			}

			entry := &model.ScheduleEntry{
				EmployeeID:    e.ID,
				TransporterID: e.TransporterID,
				Date:          d,
				YearWeek:      target,
				WeekDay:       week.WeekdayName(d),
				Type:          "Off",
				Status:        model.EntryStatusOff,
			}

			_, created, err := s.scheduleRepo.CreateIfAbsent(ctx, entry)
			switch {
			case err != nil:
				row.Outcome = model.OutcomeError
				row.Error = err.Error()
				logger.Error("Failed to create schedule row", "transporter_id", e.TransporterID, "date", d.Format("2006-01-02"), "error", err)
			case created:
				row.Outcome = model.OutcomeCreated
				result.Created++
			default:
				row.Outcome = model.OutcomeSkipped
			}
			result.Rows = append(result.Rows, row)
		}
	}

	if err := s.scheduleRepo.RegisterWeek(ctx, target); err != nil {
		return nil, fmt.Errorf("register week: %w", err)
	}

	if isNewWeek {
		prom.IncCounter(prom.SystemSchedule, prom.MetricWeeksGenerated)
	}

	user := "system"
	if session != nil {
		user = session.Name
	}
	logger.Info("Week generated",
		"year_week", target,
		"created", result.Created,
		"employees", result.Employees,
		"missing_employees", result.MissingEmployees,
		"is_new_week", result.IsNewWeek,
		"user", user,
	)

	return result, nil
}

func (s *ScheduleService) resolveTargetWeek(ctx context.Context, yearWeek string) (string, error) {
	if yearWeek != "" {
		if _, _, err := week.Parse(yearWeek); err != nil {
			return "", err
		}
		return yearWeek, nil
	}

	latest, err := s.scheduleRepo.LatestWeek(ctx)
	if err != nil {
		return "", err
	}
	if latest == "" {
		// Empty registry: start with the current calendar week.
		return week.Of(s.now()), nil
	}
	return week.Next(latest)
}

// GetWeek assembles the weekly grid: one row per transporter carrying
// that week's entries indexed Sunday through Saturday, plus how many
// trailing days the employee worked at the end of the previous week.
func (s *ScheduleService) GetWeek(ctx context.Context, yearWeek string) (*model.WeekSchedule, error) {
	dates, err := week.Dates(yearWeek)
	if err != nil {
		return nil, err
	}

	entries, err := s.scheduleRepo.FindByWeek(ctx, yearWeek)
	if err != nil {
		return nil, err
	}

	byTransporter := make(map[string]map[int]*model.ScheduleEntry)
	var order []string
	for _, entry := range entries {
		days, ok := byTransporter[entry.TransporterID]
		if !ok {
			days = make(map[int]*model.ScheduleEntry, 7)
			byTransporter[entry.TransporterID] = days
			order = append(order, entry.TransporterID)
		}
		idx := dayIndex(dates, entry.Date)
		if idx < 0 {
			continue
		}
		days[idx] = entry
	}

	employees, err := s.employeeRepo.FindByTransporterIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	employeeByTransporter := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		employeeByTransporter[e.TransporterID] = e
	}

	trailing, err := s.prevWeekTrailing(ctx, yearWeek)
	if err != nil {
		// The grid is still useful without the carry-over column.
		logger.Warn("Failed to compute previous week trailing days", "year_week", yearWeek, "error", err)
		trailing = map[string]int{}
	}

	schedule := &model.WeekSchedule{
		YearWeek: yearWeek,
		Dates:    dates,
	}
	for _, transporterID := range order {
		row := &model.EmployeeWeek{
			TransporterID:    transporterID,
			Days:             byTransporter[transporterID],
			PrevWeekTrailing: trailing[transporterID],
		}
		if e, ok := employeeByTransporter[transporterID]; ok {
			row.EmployeeID = e.ID
			row.Name = e.DisplayName()
			row.Type = e.Type
			row.Status = e.Status
			row.SchedulingNote = e.SchedulingNote
		}
		schedule.Employees = append(schedule.Employees, row)
	}

	return schedule, nil
}

// prevWeekTrailing counts, per transporter, the unbroken run of days with
// status Scheduled ending on the previous week's Saturday.
func (s *ScheduleService) prevWeekTrailing(ctx context.Context, yearWeek string) (map[string]int, error) {
	prev, err := week.Prev(yearWeek)
	if err != nil {
		return nil, err
	}
	prevDates, err := week.Dates(prev)
	if err != nil {
		return nil, err
	}

	entries, err := s.scheduleRepo.FindByWeek(ctx, prev)
	if err != nil {
		return nil, err
	}

	byTransporter := make(map[string]map[int]*model.ScheduleEntry)
	for _, entry := range entries {
		idx := dayIndex(prevDates, entry.Date)
		if idx < 0 {
			continue
		}
		if byTransporter[entry.TransporterID] == nil {
			byTransporter[entry.TransporterID] = make(map[int]*model.ScheduleEntry, 7)
		}
		byTransporter[entry.TransporterID][idx] = entry
	}

	trailing := make(map[string]int, len(byTransporter))
	for transporterID, days := range byTransporter {
		count := 0
		for i := 6; i >= 0; i-- {
			entry, ok := days[i]
			if !ok || entry.Status != model.EntryStatusScheduled {
				break
			}
			count++
		}
		trailing[transporterID] = count
	}
	return trailing, nil
}

func (s *ScheduleService) ListWeeks(ctx context.Context) ([]string, error) {
	return s.scheduleRepo.ListWeeks(ctx)
}

// UpdateEntryType sets a day's type by row id. Status follows the type:
// working types schedule the day, everything else turns it off.
func (s *ScheduleService) UpdateEntryType(ctx context.Context, session *auth.Session, req model.UpdateByScheduleID) (*model.ScheduleEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := statusForType(req.Type)
	entry, err := s.scheduleRepo.UpdateType(ctx, req.ScheduleID, strings.TrimSpace(req.Type), status)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	logger.Info("Schedule entry updated",
		"schedule_id", req.ScheduleID,
		"type", req.Type,
		"status", string(status),
		"user", sessionName(session),
	)
	return entry, nil
}

// UpdateEmployeeNote writes the per-employee scheduling note.
func (s *ScheduleService) UpdateEmployeeNote(ctx context.Context, session *auth.Session, req model.UpdateEmployeeNote) (*model.Employee, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employee, err := s.employeeRepo.UpdateSchedulingNote(ctx, req.EmployeeID, req.Note)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	logger.Info("Employee note updated", "employee_id", req.EmployeeID, "user", sessionName(session))
	return employee, nil
}

// UpsertEntry updates a day addressed by transporter and date, creating
// the row when the generator never produced one. The bool reports
// whether a new row was created.
func (s *ScheduleService) UpsertEntry(ctx context.Context, session *auth.Session, req model.UpsertByComposite) (*model.ScheduleEntry, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	status := statusForType(req.Type)

	existing, err := s.scheduleRepo.FindByTransporterAndDate(ctx, req.TransporterID, req.Date)
	if err == nil {
		entry, err := s.scheduleRepo.UpdateType(ctx, existing.ID, strings.TrimSpace(req.Type), status)
		if err != nil {
			return nil, false, err
		}
		logger.Info("Schedule entry upserted",
			"transporter_id", req.TransporterID,
			"date", req.Date.Format("2006-01-02"),
			"created", false,
			"user", sessionName(session),
		)
		return entry, false, nil
	}
	if !errors.Is(err, repository.ErrScheduleNotFound) {
		return nil, false, err
	}

	var employeeID int64
	if employee, err := s.employeeRepo.FindByTransporterID(ctx, req.TransporterID); err == nil {
		employeeID = employee.ID
	}

	weekDay := req.WeekDay
	if weekDay == "" {
		weekDay = week.WeekdayName(req.Date)
	}

	// a row created through the upsert path is always an active
	// assignment, whatever the type says
	entry, err := s.scheduleRepo.Create(ctx, &model.ScheduleEntry{
		EmployeeID:    employeeID,
		TransporterID: req.TransporterID,
		Date:          req.Date,
		YearWeek:      req.YearWeek,
		WeekDay:       weekDay,
		Type:          strings.TrimSpace(req.Type),
		Status:        model.EntryStatusScheduled,
	})
	if err != nil {
		return nil, false, err
	}

	logger.Info("Schedule entry upserted",
		"transporter_id", req.TransporterID,
		"date", req.Date.Format("2006-01-02"),
		"created", true,
		"user", sessionName(session),
	)
	return entry, true, nil
}

func statusForType(dayType string) model.EntryStatus {
	if model.IsWorkingType(dayType) {
		return model.EntryStatusScheduled
	}
	return model.EntryStatusOff
}

func sessionName(session *auth.Session) string {
	if session == nil {
		return "system"
	}
	return session.Name
}

func dayIndex(dates [7]time.Time, d time.Time) int {
	for i, date := range dates {
		if date.Year() == d.Year() && date.YearDay() == d.YearDay() {
			return i
		}
	}
	return -1
}
