package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/billing"
)

func TestRecompute_SumsUnsettledRemainders(t *testing.T) {
	f := newBillingFixture(t)
	balance := NewBalanceService(f.billRepo, f.tenantRepo, zap.NewNop())

	period, err := billing.NewBillingPeriod(4, 2024)
	require.NoError(t, err)
	first, err := billing.NewBill(f.dorm.ID, f.room.ID, f.room.Number, period,
		time.Now(), billing.BillItems{billing.NewBillItem(billing.BillItemRent, "Room rent", decimal.NewFromInt(3000))})
	require.NoError(t, err)
	require.NoError(t, first.ApplyPayment(billing.NewPayment(decimal.NewFromInt(1000), billing.PaymentMethodCash)))

	period2, err := billing.NewBillingPeriod(5, 2024)
	require.NoError(t, err)
	second, err := billing.NewBill(f.dorm.ID, f.room.ID, f.room.Number, period2,
		time.Now(), billing.BillItems{billing.NewBillItem(billing.BillItemRent, "Room rent", decimal.NewFromInt(3280))})
	require.NoError(t, err)

	f.tenantRepo.On("FindByID", mock.Anything, f.tenant.ID).Return(f.tenant, nil)
	f.billRepo.On("FindUnsettledByTenant", mock.Anything, f.tenant.ID).Return([]*billing.Bill{first, second}, nil)
	f.tenantRepo.On("SaveWithLock", mock.Anything, f.tenant).Return(nil).Once()

	got, err := balance.Recompute(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5280)), "2000 + 3280, got %s", got)
	assert.True(t, f.tenant.OutstandingBalance.Equal(decimal.NewFromInt(5280)))

	// running again with no bill changes converges to the same value
	// and skips the write
	got, err = balance.Recompute(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5280)))
	f.tenantRepo.AssertExpectations(t)
}
