package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dormhub/backend/internal/domain/shared"
)

// BillStatus represents the lifecycle state of a bill
type BillStatus string

const (
	BillStatusPending       BillStatus = "PENDING"
	BillStatusPartiallyPaid BillStatus = "PARTIALLY_PAID"
	BillStatusPaid          BillStatus = "PAID"
	BillStatusOverdue       BillStatus = "OVERDUE"
)

// IsValid checks if the bill status is valid
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartiallyPaid, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}

// BillingPeriod identifies the calendar month a bill covers
type BillingPeriod struct {
	Month int `json:"month" gorm:"column:period_month;not null"`
	Year  int `json:"year" gorm:"column:period_year;not null"`
}

// NewBillingPeriod validates and creates a billing period
func NewBillingPeriod(month, year int) (BillingPeriod, error) {
	if month < 1 || month > 12 {
		return BillingPeriod{}, shared.NewDomainError(shared.ErrCodeInvalidAmount, fmt.Sprintf("billing month must be 1..12, got %d", month))
	}
	if year < 2000 || year > 2200 {
		return BillingPeriod{}, shared.NewDomainError(shared.ErrCodeInvalidAmount, fmt.Sprintf("billing year out of range: %d", year))
	}
	return BillingPeriod{Month: month, Year: year}, nil
}

// String formats the period as YYYY-MM
func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Bill is the aggregate root for one room's charges in one billing
// period. Uniqueness over (dormitory, room, period) is enforced by a
// partial index that ignores voided and forced-duplicate rows.
type Bill struct {
	shared.DormitoryAggregateRoot
	RoomID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	RoomNumber      string          `gorm:"not null"`
	TenantID        *uuid.UUID      `gorm:"type:uuid;index"`
	TenantName      string          `gorm:""`
	Period          BillingPeriod   `gorm:"embedded"`
	DueDate         time.Time       `gorm:"not null"`
	Items           BillItems       `gorm:"type:jsonb"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status          BillStatus      `gorm:"not null;default:'PENDING'"`
	PaymentRecords  Payments        `gorm:"type:jsonb"`
	ForcedDuplicate bool            `gorm:"not null;default:false"`
	Voided          bool            `gorm:"not null;default:false"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Bill) TableName() string {
	return "bills"
}

// NewBill creates a pending bill from a computed charge breakdown.
// The total is the sum of items, never passed in separately.
func NewBill(dormitoryID, roomID uuid.UUID, roomNumber string, period BillingPeriod, dueDate time.Time, items BillItems) (*Bill, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidAmount, "a bill needs at least one item")
	}
	total := items.Total()
	if total.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidAmount, "bill total cannot be negative")
	}
	b := &Bill{
		DormitoryAggregateRoot: shared.NewDormitoryAggregateRoot(dormitoryID),
		RoomID:                 roomID,
		RoomNumber:             roomNumber,
		Period:                 period,
		DueDate:                dueDate,
		Items:                  items,
		TotalAmount:            total,
		PaidAmount:             decimal.Zero,
		Status:                 BillStatusPending,
		PaymentRecords:         Payments{},
	}
	b.AddDomainEvent(NewBillCreatedEvent(b))
	return b, nil
}

// AttachTenant records who occupied the room when the bill was issued
func (b *Bill) AttachTenant(tenantID uuid.UUID, tenantName string) {
	b.TenantID = &tenantID
	b.TenantName = tenantName
}

// MarkForcedDuplicate exempts this bill from the period uniqueness index
func (b *Bill) MarkForcedDuplicate() {
	b.ForcedDuplicate = true
}

// RemainingAmount returns how much is still owed
func (b *Bill) RemainingAmount() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}

// IsSettled returns true when nothing is owed
func (b *Bill) IsSettled() bool {
	return b.Status == BillStatusPaid
}

// IsOpen returns true when the bill still accepts payments
func (b *Bill) IsOpen() bool {
	return !b.Voided && b.Status != BillStatusPaid
}

// HasPayments returns true when any completed payment has been applied
func (b *Bill) HasPayments() bool {
	return b.PaymentRecords.CompletedTotal().IsPositive()
}

// CanApplyPayment validates a payment before it is applied
func (b *Bill) CanApplyPayment(amount decimal.Decimal) error {
	if b.Voided {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "cannot pay a voided bill")
	}
	if b.Status == BillStatusPaid {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "bill is already fully paid")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.ErrCodeInvalidAmount, "payment amount must be positive")
	}
	if amount.GreaterThan(b.RemainingAmount()) {
		return shared.NewDomainError(shared.ErrCodeInvalidAmount,
			fmt.Sprintf("payment %s exceeds remaining amount %s", amount.StringFixed(2), b.RemainingAmount().StringFixed(2)))
	}
	return nil
}

// ApplyPayment records a payment and advances the bill status. A
// partial payment on an overdue bill leaves it overdue; only full
// settlement reaches PAID.
func (b *Bill) ApplyPayment(payment Payment) error {
	if err := b.CanApplyPayment(payment.Amount); err != nil {
		return err
	}
	b.PaymentRecords = append(b.PaymentRecords, payment)
	b.PaidAmount = b.PaidAmount.Add(payment.Amount)

	if b.RemainingAmount().IsZero() {
		b.Status = BillStatusPaid
	} else if b.Status == BillStatusPending {
		b.Status = BillStatusPartiallyPaid
	}
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewPaymentAppliedEvent(b, payment))
	if b.Status == BillStatusPaid {
		b.AddDomainEvent(NewBillPaidEvent(b))
	}
	return nil
}

// MarkOverdue flips an unpaid bill past its due date to OVERDUE.
// Idempotent; settled and voided bills are never overdue.
func (b *Bill) MarkOverdue(now time.Time) bool {
	if b.Voided || b.Status == BillStatusPaid || b.Status == BillStatusOverdue {
		return false
	}
	if !now.After(b.DueDate) {
		return false
	}
	b.Status = BillStatusOverdue
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillOverdueEvent(b))
	return true
}

// Void marks the bill void, freeing its period uniqueness slot.
// Settled bills cannot be voided. Payments already applied stay on
// the voided row for audit.
func (b *Bill) Void(reason string) error {
	if b.Voided {
		return nil
	}
	if b.IsSettled() {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "cannot void a settled bill")
	}
	b.Voided = true
	b.Notes = reason
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillVoidedEvent(b, reason))
	return nil
}

// CanDelete guards hard deletion. Settled bills are kept; anything
// still owing may be removed so a corrected bill can take its slot.
func (b *Bill) CanDelete() error {
	if b.IsSettled() {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "cannot delete a settled bill")
	}
	return nil
}
