package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// BalanceService recomputes a tenant's outstanding balance from their
// unsettled bills. The stored balance is a cache; Recompute always
// converges to the same value for the same bill set, so it is safe to
// call after every bill mutation and from reconciliation sweeps.
type BalanceService struct {
	billRepo   billing.BillRepository
	tenantRepo tenancy.TenantRepository
	logger     *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	billRepo billing.BillRepository,
	tenantRepo tenancy.TenantRepository,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		billRepo:   billRepo,
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// Recompute sums the remaining amounts of the tenant's PENDING,
// PARTIALLY_PAID and OVERDUE bills and writes the result back to the
// tenant. Returns the new balance.
func (s *BalanceService) Recompute(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}

	bills, err := s.billRepo.FindUnsettledByTenant(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, bill := range bills {
		balance = balance.Add(bill.RemainingAmount())
	}

	if tenant.OutstandingBalance.Equal(balance) {
		return balance, nil
	}

	tenant.SetOutstandingBalance(balance)
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return decimal.Zero, err
	}

	s.logger.Debug("outstanding balance recomputed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("balance", balance.StringFixed(2)),
		zap.Int("unsettled_bills", len(bills)))
	return balance, nil
}
