package tenancy

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpecialItem is a tenant-specific recurring or fixed-duration extra
// charge. Duration counts billing cycles; zero means indefinite.
type SpecialItem struct {
	ID                     uuid.UUID       `json:"id"`
	Name                   string          `json:"name"`
	Amount                 decimal.Decimal `json:"amount"`
	Duration               int             `json:"duration"`
	RemainingBillingCycles int             `json:"remaining_billing_cycles"`
}

// NewSpecialItem creates a special item. A zero duration makes the
// charge indefinite; otherwise it runs for duration billing cycles.
func NewSpecialItem(name string, amount decimal.Decimal, duration int) SpecialItem {
	return SpecialItem{
		ID:                     uuid.New(),
		Name:                   name,
		Amount:                 amount,
		Duration:               duration,
		RemainingBillingCycles: duration,
	}
}

// IsActive returns true while the charge still applies to new bills
func (s SpecialItem) IsActive() bool {
	return s.Duration == 0 || s.RemainingBillingCycles > 0
}

// Tick consumes one billing cycle from a fixed-duration item
func (s *SpecialItem) Tick() {
	if s.Duration == 0 {
		return
	}
	if s.RemainingBillingCycles > 0 {
		s.RemainingBillingCycles--
	}
}

// SpecialItems is a slice of SpecialItem stored as JSONB
type SpecialItems []SpecialItem

// Value implements driver.Valuer for JSONB storage
func (s SpecialItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *SpecialItems) Scan(value interface{}) error {
	if value == nil {
		*s = SpecialItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan SpecialItems: unsupported type")
	}
	if len(bytes) == 0 {
		*s = SpecialItems{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// ActiveTotal sums the amounts of all still-active items
func (s SpecialItems) ActiveTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s {
		if item.IsActive() {
			total = total.Add(item.Amount)
		}
	}
	return total
}
