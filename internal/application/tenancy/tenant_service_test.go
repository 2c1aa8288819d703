package tenancy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindByRoom(ctx context.Context, roomID uuid.UUID) (*tenancy.Tenant, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]tenancy.Tenant, error) {
	args := m.Called(ctx, dormitoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindActiveByDormitory(ctx context.Context, dormitoryID uuid.UUID) ([]tenancy.Tenant, error) {
	args := m.Called(ctx, dormitoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenancy.Tenant), args.Error(1)
}

func (m *mockTenantRepo) Save(ctx context.Context, tenant *tenancy.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepo) SaveWithLock(ctx context.Context, tenant *tenancy.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTenantRepo) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, dormitoryID)
	return args.Get(0).(int64), args.Error(1)
}

type mockOccupancyCoordinator struct {
	mock.Mock
}

func (m *mockOccupancyCoordinator) AssignTenant(ctx context.Context, roomID, tenantID uuid.UUID) (*dormitory.Room, error) {
	args := m.Called(ctx, roomID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

func (m *mockOccupancyCoordinator) ReleaseRoom(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dormitory.Room), args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type passthroughTx struct{}

func (passthroughTx) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTenantFixture() (*TenantService, *mockTenantRepo, *mockOccupancyCoordinator, *mockEventPublisher) {
	repo := new(mockTenantRepo)
	coordinator := new(mockOccupancyCoordinator)
	publisher := new(mockEventPublisher)
	svc := NewTenantService(repo, coordinator, passthroughTx{}, publisher, zap.NewNop())
	return svc, repo, coordinator, publisher
}

func TestMoveIn_Success(t *testing.T) {
	svc, repo, coordinator, publisher := newTenantFixture()
	dormID := uuid.New()
	roomID := uuid.New()

	repo.On("FindByRoom", mock.Anything, roomID).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	coordinator.On("AssignTenant", mock.Anything, roomID, mock.Anything).Return(&dormitory.Room{}, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	tenant, err := svc.MoveIn(context.Background(), MoveInInput{
		DormitoryID:       dormID,
		RoomID:            roomID,
		Name:              "Somchai",
		Phone:             "0812345678",
		NumberOfResidents: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Somchai", tenant.Name)
	assert.Equal(t, "0812345678", tenant.Phone)
	assert.True(t, tenant.IsActive())
	coordinator.AssertCalled(t, "AssignTenant", mock.Anything, roomID, tenant.ID)
}

func TestMoveIn_RoomAlreadyOccupied(t *testing.T) {
	svc, repo, coordinator, _ := newTenantFixture()
	roomID := uuid.New()
	existing, err := tenancy.NewTenant(uuid.New(), roomID, "Somying", 1)
	require.NoError(t, err)

	repo.On("FindByRoom", mock.Anything, roomID).Return(existing, nil)

	_, err = svc.MoveIn(context.Background(), MoveInInput{
		DormitoryID:       uuid.New(),
		RoomID:            roomID,
		Name:              "Somchai",
		NumberOfResidents: 1,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeRoomStateConflict, domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	coordinator.AssertNotCalled(t, "AssignTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteMoveOut_BlockedByOutstandingBalance(t *testing.T) {
	svc, repo, coordinator, _ := newTenantFixture()
	tenant, err := tenancy.NewTenant(uuid.New(), uuid.New(), "Somchai", 1)
	require.NoError(t, err)
	tenant.OutstandingBalance = decimal.NewFromInt(1280)

	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err = svc.CompleteMoveOut(context.Background(), tenant.ID)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeOutstandingBalance, domainErr.Code)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	coordinator.AssertNotCalled(t, "ReleaseRoom", mock.Anything, mock.Anything)
}

func TestCompleteMoveOut_SettledReleasesRoom(t *testing.T) {
	svc, repo, coordinator, publisher := newTenantFixture()
	roomID := uuid.New()
	tenant, err := tenancy.NewTenant(uuid.New(), roomID, "Somchai", 1)
	require.NoError(t, err)
	tenant.ClearDomainEvents()

	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	coordinator.On("ReleaseRoom", mock.Anything, roomID).Return(&dormitory.Room{}, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	moved, err := svc.CompleteMoveOut(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenancy.TenantStatusMovedOut, moved.Status)
	assert.Nil(t, moved.RoomID)
	coordinator.AssertExpectations(t)
}

func TestAddAndRemoveSpecialItem(t *testing.T) {
	svc, repo, _, _ := newTenantFixture()
	tenant, err := tenancy.NewTenant(uuid.New(), uuid.New(), "Somchai", 1)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("SaveWithLock", mock.Anything, tenant).Return(nil)

	updated, err := svc.AddSpecialItem(context.Background(), tenant.ID, SpecialItemInput{
		Name:     "Aircon cleaning",
		Amount:   decimal.NewFromInt(300),
		Duration: 2,
	})
	require.NoError(t, err)
	require.Len(t, updated.SpecialItems, 1)

	updated, err = svc.RemoveSpecialItem(context.Background(), tenant.ID, updated.SpecialItems[0].ID)
	require.NoError(t, err)
	assert.Empty(t, updated.SpecialItems)
}

func TestStartMoveOut_InvalidState(t *testing.T) {
	svc, repo, _, _ := newTenantFixture()
	tenant, err := tenancy.NewTenant(uuid.New(), uuid.New(), "Somchai", 1)
	require.NoError(t, err)
	require.NoError(t, tenant.StartMoveOut())

	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err = svc.StartMoveOut(context.Background(), tenant.ID)
	require.Error(t, err)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}
