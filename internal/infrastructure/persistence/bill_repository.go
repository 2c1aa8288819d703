package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var bill billing.Bill
	if err := dbFromContext(ctx, r.db).First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindActiveByRoomAndPeriod finds the bill occupying the uniqueness
// slot for a room and period. Voided and force-created bills do not
// occupy the slot. Returns (nil, nil) when the slot is free.
func (r *GormBillRepository) FindActiveByRoomAndPeriod(ctx context.Context, dormitoryID uuid.UUID, roomNumber string, period billing.BillingPeriod) (*billing.Bill, error) {
	var bill billing.Bill
	err := dbFromContext(ctx, r.db).
		Where("dormitory_id = ? AND room_number = ? AND period_month = ? AND period_year = ?",
			dormitoryID, roomNumber, period.Month, period.Year).
		Where("voided = ? AND forced_duplicate = ?", false, false).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

// FindUnsettledByTenant finds a tenant's bills that still carry a
// remaining amount, excluding voided bills.
func (r *GormBillRepository) FindUnsettledByTenant(ctx context.Context, tenantID uuid.UUID) ([]*billing.Bill, error) {
	var bills []*billing.Bill
	err := dbFromContext(ctx, r.db).
		Where("tenant_id = ? AND voided = ? AND status IN ?",
			tenantID, false,
			[]billing.BillStatus{billing.BillStatusPending, billing.BillStatusPartiallyPaid, billing.BillStatusOverdue}).
		Order("period_year ASC, period_month ASC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// FindOverdueCandidates finds open bills whose due date has passed
func (r *GormBillRepository) FindOverdueCandidates(ctx context.Context, cutoff time.Time) ([]*billing.Bill, error) {
	var bills []*billing.Bill
	err := dbFromContext(ctx, r.db).
		Where("due_date < ? AND voided = ? AND status IN ?",
			cutoff, false,
			[]billing.BillStatus{billing.BillStatusPending, billing.BillStatusPartiallyPaid}).
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// FindByDormitory lists a dormitory's bills with pagination
func (r *GormBillRepository) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Bill], error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&billing.Bill{}).Where("dormitory_id = ?", dormitoryID).Count(&total).Error; err != nil {
		return nil, err
	}

	var bills []*billing.Bill
	query := applyFilter(db.Where("dormitory_id = ?", dormitoryID), filter, billSortFields)
	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(bills, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindByRoom lists a room's bills with pagination
func (r *GormBillRepository) FindByRoom(ctx context.Context, roomID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Bill], error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&billing.Bill{}).Where("room_id = ?", roomID).Count(&total).Error; err != nil {
		return nil, err
	}

	var bills []*billing.Bill
	query := applyFilter(db.Where("room_id = ?", roomID), filter, billSortFields)
	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(bills, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a bill. The partial unique index on
// (dormitory_id, room_number, period_month, period_year) rejects a
// second active bill for the same slot even when two writers race
// past the advisory duplicate check.
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	err := dbFromContext(ctx, r.db).Save(bill).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.ErrCodeDuplicateBill,
			"A bill for this room and period already exists")
	}
	return err
}

// SaveWithLock saves a bill guarded by its optimistic-lock version
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	result := dbFromContext(ctx, r.db).
		Model(bill).
		Where("id = ? AND version = ?", bill.ID, bill.Version-1).
		Updates(map[string]interface{}{
			"tenant_id":       bill.TenantID,
			"tenant_name":     bill.TenantName,
			"paid_amount":     bill.PaidAmount,
			"status":          bill.Status,
			"payment_records": bill.PaymentRecords,
			"voided":          bill.Voided,
			"notes":           bill.Notes,
			"version":         bill.Version,
			"updated_at":      bill.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a bill. The caller checks CanDelete first.
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&billing.Bill{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
