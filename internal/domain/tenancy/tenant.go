package tenancy

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantStatus represents the occupancy lifecycle of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusMovingOut TenantStatus = "MOVING_OUT"
	TenantStatusMovedOut  TenantStatus = "MOVED_OUT"
)

// IsValid checks if the status is a valid TenantStatus
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantStatusActive, TenantStatusMovingOut, TenantStatusMovedOut:
		return true
	}
	return false
}

// ElectricityUsage is the tenant's last metered electricity snapshot,
// refreshed whenever a reading is recorded for their room.
type ElectricityUsage struct {
	PreviousReading int64 `json:"previous_reading"`
	CurrentReading  int64 `json:"current_reading"`
	UnitsUsed       int64 `json:"units_used"`
}

// Value implements driver.Valuer for JSONB storage
func (u ElectricityUsage) Value() (driver.Value, error) {
	return json.Marshal(u)
}

// Scan implements sql.Scanner for JSONB retrieval
func (u *ElectricityUsage) Scan(value interface{}) error {
	if value == nil {
		*u = ElectricityUsage{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ElectricityUsage: unsupported type")
	}
	if len(bytes) == 0 {
		*u = ElectricityUsage{}
		return nil
	}
	return json.Unmarshal(bytes, u)
}

// Tenant is a person renting exactly one room. OutstandingBalance is a
// derived cache recomputed from unsettled bills, never written directly
// by handlers.
type Tenant struct {
	shared.DormitoryAggregateRoot
	Name               string           `json:"name" gorm:"not null"`
	Phone              string           `json:"phone"`
	RoomID             *uuid.UUID       `json:"room_id" gorm:"type:uuid;index"`
	Status             TenantStatus     `json:"status" gorm:"not null;default:'ACTIVE'"`
	NumberOfResidents  int              `json:"number_of_residents" gorm:"not null;default:1"`
	OutstandingBalance decimal.Decimal  `json:"outstanding_balance" gorm:"type:decimal(12,2);not null;default:0"`
	ElectricityUsage   ElectricityUsage `json:"electricity_usage" gorm:"type:jsonb"`
	SpecialItems       SpecialItems     `json:"special_items" gorm:"type:jsonb"`
	HasMeterReading    bool             `json:"has_meter_reading" gorm:"not null;default:false"` // current billing period
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new active tenant assigned to a room
func NewTenant(dormitoryID, roomID uuid.UUID, name string, numberOfResidents int) (*Tenant, error) {
	if dormitoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DORMITORY", "Dormitory ID cannot be empty")
	}
	if roomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if numberOfResidents < 1 {
		return nil, shared.NewDomainError("INVALID_RESIDENTS", "Number of residents must be at least 1")
	}
	t := &Tenant{
		DormitoryAggregateRoot: shared.NewDormitoryAggregateRoot(dormitoryID),
		Name:                   name,
		RoomID:                 &roomID,
		Status:                 TenantStatusActive,
		NumberOfResidents:      numberOfResidents,
		OutstandingBalance:     decimal.Zero,
		SpecialItems:           SpecialItems{},
	}
	t.AddDomainEvent(NewTenantMovedInEvent(t))
	return t, nil
}

// IsActive returns true while the tenant occupies a room
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive || t.Status == TenantStatusMovingOut
}

// StartMoveOut flags the tenant as leaving at the end of the period
func (t *Tenant) StartMoveOut() error {
	if t.Status != TenantStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot start move-out for tenant in %s status", t.Status))
	}
	t.Status = TenantStatusMovingOut
	t.Touch()
	t.IncrementVersion()
	return nil
}

// CompleteMoveOut finalizes the move-out. The caller must already have
// verified that the outstanding balance is settled.
func (t *Tenant) CompleteMoveOut() error {
	if t.Status == TenantStatusMovedOut {
		return shared.NewDomainError("INVALID_STATE", "Tenant already moved out")
	}
	if !t.OutstandingBalance.IsZero() {
		return shared.NewDomainError(shared.ErrCodeOutstandingBalance,
			fmt.Sprintf("Tenant %s still owes %s", t.Name, t.OutstandingBalance.StringFixed(2)))
	}
	t.Status = TenantStatusMovedOut
	t.RoomID = nil
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTenantMovedOutEvent(t))
	return nil
}

// RecordElectricityUsage refreshes the usage snapshot from a new reading
func (t *Tenant) RecordElectricityUsage(previous, current int64) {
	units := current - previous
	if units < 0 {
		units = 0
	}
	t.ElectricityUsage = ElectricityUsage{
		PreviousReading: previous,
		CurrentReading:  current,
		UnitsUsed:       units,
	}
	t.HasMeterReading = true
	t.Touch()
	t.IncrementVersion()
}

// ResetBillingPeriod clears the per-period meter flag after a bill is
// created, so the next period requires a fresh reading.
func (t *Tenant) ResetBillingPeriod() {
	t.HasMeterReading = false
	t.Touch()
}

// AddSpecialItem attaches a recurring or fixed-duration extra charge
func (t *Tenant) AddSpecialItem(name string, amount decimal.Decimal, duration int) (SpecialItem, error) {
	if name == "" {
		return SpecialItem{}, shared.NewDomainError("INVALID_INPUT", "Special item name cannot be empty")
	}
	if amount.IsNegative() {
		return SpecialItem{}, shared.NewDomainError(shared.ErrCodeInvalidAmount, "Special item amount cannot be negative")
	}
	if duration < 0 {
		return SpecialItem{}, shared.NewDomainError("INVALID_INPUT", "Special item duration cannot be negative")
	}
	item := NewSpecialItem(name, amount, duration)
	t.SpecialItems = append(t.SpecialItems, item)
	t.Touch()
	t.IncrementVersion()
	return item, nil
}

// RemoveSpecialItem detaches a special item by id
func (t *Tenant) RemoveSpecialItem(id uuid.UUID) error {
	for i, item := range t.SpecialItems {
		if item.ID == id {
			t.SpecialItems = append(t.SpecialItems[:i], t.SpecialItems[i+1:]...)
			t.Touch()
			t.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// TickSpecialItems consumes one billing cycle from every fixed-duration
// item. Called exactly once per bill creation by the billing service.
func (t *Tenant) TickSpecialItems() {
	for i := range t.SpecialItems {
		t.SpecialItems[i].Tick()
	}
	t.Touch()
	t.IncrementVersion()
}

// SetOutstandingBalance overwrites the derived balance cache
func (t *Tenant) SetOutstandingBalance(balance decimal.Decimal) {
	t.OutstandingBalance = balance
	t.Touch()
	t.IncrementVersion()
}
