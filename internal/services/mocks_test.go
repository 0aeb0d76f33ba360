package services

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	gateway "github.com/aivisualpro/SYMXSystems-sub002/internal/gateways"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) CreateIfAbsent(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleEntry, bool, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.ScheduleEntry), args.Bool(1), args.Error(2)
}

func (m *MockScheduleRepository) FindByID(ctx context.Context, id int64) (*model.ScheduleEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) FindByWeek(ctx context.Context, yearWeek string) ([]*model.ScheduleEntry, error) {
	args := m.Called(ctx, yearWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) TransportersWithEntries(ctx context.Context, yearWeek string) ([]string, error) {
	args := m.Called(ctx, yearWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockScheduleRepository) FindByTransporterAndDate(ctx context.Context, transporterID string, date time.Time) (*model.ScheduleEntry, error) {
	args := m.Called(ctx, transporterID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) FindLatestByTransporter(ctx context.Context, transporterID string) (*model.ScheduleEntry, error) {
	args := m.Called(ctx, transporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) UpdateType(ctx context.Context, id int64, dayType string, status model.EntryStatus) (*model.ScheduleEntry, error) {
	args := m.Called(ctx, id, dayType, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) UpdateStatus(ctx context.Context, id int64, status model.EntryStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockScheduleRepository) AppendConfirmationRecord(ctx context.Context, rec *model.ConfirmationRecord) (*model.ConfirmationRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmationRecord), args.Error(1)
}

func (m *MockScheduleRepository) RegisterWeek(ctx context.Context, yearWeek string) error {
	args := m.Called(ctx, yearWeek)
	return args.Error(0)
}

func (m *MockScheduleRepository) ListWeeks(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockScheduleRepository) LatestWeek(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindActiveWithTransporter(ctx context.Context) ([]*model.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByTransporterID(ctx context.Context, transporterID string) (*model.Employee, error) {
	args := m.Called(ctx, transporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByTransporterIDs(ctx context.Context, transporterIDs []string) ([]*model.Employee, error) {
	args := m.Called(ctx, transporterIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByPhone(ctx context.Context, phone string) (*model.Employee, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) UpdateSchedulingNote(ctx context.Context, employeeID int64, note string) (*model.Employee, error) {
	args := m.Called(ctx, employeeID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

type MockMessageLogRepository struct {
	mock.Mock
}

func (m *MockMessageLogRepository) Create(ctx context.Context, log *model.MessageLog) (*model.MessageLog, error) {
	args := m.Called(ctx, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageLog), args.Error(1)
}

func (m *MockMessageLogRepository) FindByID(ctx context.Context, id int64) (*model.MessageLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageLog), args.Error(1)
}

func (m *MockMessageLogRepository) FindByProviderMessageID(ctx context.Context, providerMessageID string) (*model.MessageLog, error) {
	args := m.Called(ctx, providerMessageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageLog), args.Error(1)
}

func (m *MockMessageLogRepository) FindLatestByToNumber(ctx context.Context, phone string, statuses []model.MessageLogStatus) (*model.MessageLog, error) {
	args := m.Called(ctx, phone, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageLog), args.Error(1)
}

func (m *MockMessageLogRepository) MarkDelivered(ctx context.Context, id int64, at time.Time, rawPayload string) error {
	args := m.Called(ctx, id, at, rawPayload)
	return args.Error(0)
}

func (m *MockMessageLogRepository) MarkReplied(ctx context.Context, id int64, reply string, at time.Time, rawPayload string) error {
	args := m.Called(ctx, id, reply, at, rawPayload)
	return args.Error(0)
}

type MockConfirmationRepository struct {
	mock.Mock
}

func (m *MockConfirmationRepository) Create(ctx context.Context, c *model.ScheduleConfirmation) (*model.ScheduleConfirmation, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) FindByToken(ctx context.Context, token string) (*model.ScheduleConfirmation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduleConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) LinkMessageLog(ctx context.Context, id int64, messageLogID int64) error {
	args := m.Called(ctx, id, messageLogID)
	return args.Error(0)
}

func (m *MockConfirmationRepository) SetConfirmed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockConfirmationRepository) SetChangeRequested(ctx context.Context, id int64, at time.Time, remarks string) error {
	args := m.Called(ctx, id, at, remarks)
	return args.Error(0)
}

type MockSMSGateway struct {
	mock.Mock
}

func (m *MockSMSGateway) SendSMS(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.SendResponse), args.Error(1)
}

type MockRedisAdapter struct {
	mock.Mock
}

func (m *MockRedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	args := m.Called(key, value, ttl)
	return args.Error(0)
}

func (m *MockRedisAdapter) SetNX(key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedisAdapter) Get(key string) ([]byte, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRedisAdapter) Del(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockRedisAdapter) Exist(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisAdapter) Client() goredis.UniversalClient {
	return nil
}
