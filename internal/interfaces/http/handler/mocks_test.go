package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/metering"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// Mock repositories backing the real application services under test

type mockBillRepository struct {
	mock.Mock
}

func (m *mockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *mockBillRepository) FindActiveByRoomAndPeriod(ctx context.Context, dormitoryID uuid.UUID, roomNumber string, period billing.BillingPeriod) (*billing.Bill, error) {
	args := m.Called(ctx, dormitoryID, roomNumber, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *mockBillRepository) FindUnsettledByTenant(ctx context.Context, tenantID uuid.UUID) ([]*billing.Bill, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

func (m *mockBillRepository) FindOverdueCandidates(ctx context.Context, cutoff time.Time) ([]*billing.Bill, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

func (m *mockBillRepository) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Bill], error) {
	args := m.Called(ctx, dormitoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Bill]), args.Error(1)
}

func (m *mockBillRepository) FindByRoom(ctx context.Context, roomID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Bill], error) {
	args := m.Called(ctx, roomID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Bill]), args.Error(1)
}

func (m *mockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *mockBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *mockBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRoomRepository struct {
	mock.Mock
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*dormitory.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

func (m *mockRoomRepository) FindByNumber(ctx context.Context, dormitoryID uuid.UUID, number string) (*dormitory.Room, error) {
	args := m.Called(ctx, dormitoryID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

func (m *mockRoomRepository) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]dormitory.Room, error) {
	args := m.Called(ctx, dormitoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dormitory.Room), args.Error(1)
}

func (m *mockRoomRepository) FindByStatus(ctx context.Context, dormitoryID uuid.UUID, status dormitory.RoomStatus) ([]dormitory.Room, error) {
	args := m.Called(ctx, dormitoryID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dormitory.Room), args.Error(1)
}

func (m *mockRoomRepository) Save(ctx context.Context, room *dormitory.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockRoomRepository) SaveWithLock(ctx context.Context, room *dormitory.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRoomRepository) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, dormitoryID)
	return args.Get(0).(int64), args.Error(1)
}

type mockDormitoryRepository struct {
	mock.Mock
}

func (m *mockDormitoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*dormitory.Dormitory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Dormitory), args.Error(1)
}

func (m *mockDormitoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]dormitory.Dormitory, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dormitory.Dormitory), args.Error(1)
}

func (m *mockDormitoryRepository) Save(ctx context.Context, dorm *dormitory.Dormitory) error {
	args := m.Called(ctx, dorm)
	return args.Error(0)
}

func (m *mockDormitoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDormitoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockTenantRepository struct {
	mock.Mock
}

func (m *mockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByRoom(ctx context.Context, roomID uuid.UUID) (*tenancy.Tenant, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]tenancy.Tenant, error) {
	args := m.Called(ctx, dormitoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepository) FindActiveByDormitory(ctx context.Context, dormitoryID uuid.UUID) ([]tenancy.Tenant, error) {
	args := m.Called(ctx, dormitoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepository) Save(ctx context.Context, tenant *tenancy.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepository) SaveWithLock(ctx context.Context, tenant *tenancy.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTenantRepository) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, dormitoryID)
	return args.Get(0).(int64), args.Error(1)
}

type mockReadingRepository struct {
	mock.Mock
}

func (m *mockReadingRepository) Append(ctx context.Context, reading *metering.MeterReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *mockReadingRepository) FindLatest(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType) (*metering.MeterReading, error) {
	args := m.Called(ctx, roomID, utility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.MeterReading), args.Error(1)
}

func (m *mockReadingRepository) FindByRoom(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType, limit int) ([]metering.MeterReading, error) {
	args := m.Called(ctx, roomID, utility, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]metering.MeterReading), args.Error(1)
}

func (m *mockReadingRepository) FindSince(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType, since time.Time) ([]metering.MeterReading, error) {
	args := m.Called(ctx, roomID, utility, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]metering.MeterReading), args.Error(1)
}

type mockRoomStatusCoordinator struct {
	mock.Mock
}

func (m *mockRoomStatusCoordinator) MarkBilled(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

func (m *mockRoomStatusCoordinator) ReturnToBillable(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

func (m *mockRoomStatusCoordinator) OnPaymentRecorded(ctx context.Context, roomID uuid.UUID, settled bool) (*dormitory.Room, error) {
	args := m.Called(ctx, roomID, settled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

type mockRoomStatusReconciler struct {
	mock.Mock
}

func (m *mockRoomStatusReconciler) HandleMeterReading(ctx context.Context, roomID uuid.UUID, unitsUsed int64, now time.Time) (*dormitory.Room, error) {
	args := m.Called(ctx, roomID, unitsUsed, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

type mockEvidenceStorage struct {
	mock.Mock
}

func (m *mockEvidenceStorage) Upload(ctx context.Context, storageKey, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, storageKey, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *mockEvidenceStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// passthroughTx runs the function directly, no transaction semantics
type passthroughTx struct{}

func (passthroughTx) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stubPinger reports a canned database reachability result
type stubPinger struct {
	err error
}

func (p stubPinger) Ping() error {
	return p.err
}
