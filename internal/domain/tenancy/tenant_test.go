package tenancy

import (
	"testing"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTenant(t *testing.T) *Tenant {
	tenant, err := NewTenant(uuid.New(), uuid.New(), "Somchai", 2)
	require.NoError(t, err)
	return tenant
}

func TestNewTenant(t *testing.T) {
	tenant := createTestTenant(t)
	assert.Equal(t, TenantStatusActive, tenant.Status)
	assert.True(t, tenant.OutstandingBalance.IsZero())
	assert.True(t, tenant.IsActive())
	assert.Len(t, tenant.GetDomainEvents(), 1)
}

func TestNewTenant_Validation(t *testing.T) {
	_, err := NewTenant(uuid.Nil, uuid.New(), "A", 1)
	assert.Error(t, err)
	_, err = NewTenant(uuid.New(), uuid.Nil, "A", 1)
	assert.Error(t, err)
	_, err = NewTenant(uuid.New(), uuid.New(), "", 1)
	assert.Error(t, err)
	_, err = NewTenant(uuid.New(), uuid.New(), "A", 0)
	assert.Error(t, err)
}

func TestSpecialItem_IsActive(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		remain   int
		active   bool
	}{
		{"indefinite", 0, 0, true},
		{"fixed with cycles left", 3, 1, true},
		{"fixed exhausted", 3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := SpecialItem{Duration: tt.duration, RemainingBillingCycles: tt.remain}
			assert.Equal(t, tt.active, item.IsActive())
		})
	}
}

func TestSpecialItems_ActiveTotal(t *testing.T) {
	items := SpecialItems{
		{Name: "aircon", Amount: decimal.NewFromInt(300), Duration: 0},
		{Name: "deposit installment", Amount: decimal.NewFromInt(500), Duration: 3, RemainingBillingCycles: 1},
		{Name: "expired", Amount: decimal.NewFromInt(999), Duration: 3, RemainingBillingCycles: 0},
	}
	assert.True(t, items.ActiveTotal().Equal(decimal.NewFromInt(800)))
}

func TestTenant_TickSpecialItems(t *testing.T) {
	tenant := createTestTenant(t)
	_, err := tenant.AddSpecialItem("installment", decimal.NewFromInt(500), 2)
	require.NoError(t, err)
	_, err = tenant.AddSpecialItem("aircon", decimal.NewFromInt(300), 0)
	require.NoError(t, err)

	tenant.TickSpecialItems()
	assert.Equal(t, 1, tenant.SpecialItems[0].RemainingBillingCycles)
	tenant.TickSpecialItems()
	assert.Equal(t, 0, tenant.SpecialItems[0].RemainingBillingCycles)
	assert.False(t, tenant.SpecialItems[0].IsActive())

	// ticking an exhausted item stays at zero
	tenant.TickSpecialItems()
	assert.Equal(t, 0, tenant.SpecialItems[0].RemainingBillingCycles)

	// indefinite items never decay
	assert.Equal(t, 0, tenant.SpecialItems[1].RemainingBillingCycles)
	assert.True(t, tenant.SpecialItems[1].IsActive())
}

func TestTenant_AddSpecialItem_Validation(t *testing.T) {
	tenant := createTestTenant(t)
	_, err := tenant.AddSpecialItem("", decimal.NewFromInt(1), 0)
	assert.Error(t, err)
	_, err = tenant.AddSpecialItem("x", decimal.NewFromInt(-1), 0)
	assert.Error(t, err)
	_, err = tenant.AddSpecialItem("x", decimal.NewFromInt(1), -1)
	assert.Error(t, err)
}

func TestTenant_RemoveSpecialItem(t *testing.T) {
	tenant := createTestTenant(t)
	item, err := tenant.AddSpecialItem("parking", decimal.NewFromInt(100), 0)
	require.NoError(t, err)

	require.NoError(t, tenant.RemoveSpecialItem(item.ID))
	assert.Empty(t, tenant.SpecialItems)
	assert.ErrorIs(t, tenant.RemoveSpecialItem(item.ID), shared.ErrNotFound)
}

func TestTenant_RecordElectricityUsage(t *testing.T) {
	tenant := createTestTenant(t)
	tenant.RecordElectricityUsage(100, 140)

	assert.Equal(t, int64(40), tenant.ElectricityUsage.UnitsUsed)
	assert.True(t, tenant.HasMeterReading)

	// decreasing reading clamps to zero rather than going negative
	tenant.RecordElectricityUsage(140, 120)
	assert.Equal(t, int64(0), tenant.ElectricityUsage.UnitsUsed)
}

func TestTenant_MoveOut(t *testing.T) {
	tenant := createTestTenant(t)
	require.NoError(t, tenant.StartMoveOut())
	assert.Equal(t, TenantStatusMovingOut, tenant.Status)
	assert.True(t, tenant.IsActive())

	require.NoError(t, tenant.CompleteMoveOut())
	assert.Equal(t, TenantStatusMovedOut, tenant.Status)
	assert.Nil(t, tenant.RoomID)
	assert.False(t, tenant.IsActive())

	assert.Error(t, tenant.CompleteMoveOut())
}

func TestTenant_MoveOutBlockedByOutstandingBalance(t *testing.T) {
	tenant := createTestTenant(t)
	tenant.SetOutstandingBalance(decimal.NewFromInt(1280))

	err := tenant.CompleteMoveOut()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeOutstandingBalance, domainErr.Code)
	assert.Equal(t, TenantStatusActive, tenant.Status)
}
