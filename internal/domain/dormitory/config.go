package dormitory

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dormhub/backend/internal/domain/shared"
)

// RoomTypeConfig is a catalog entry shared by many rooms.
// Immutable once referenced except via explicit config edits.
type RoomTypeConfig struct {
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// ServiceItemConfig is an optional add-on service (parking, cleaning, ...)
// that rooms can subscribe to.
type ServiceItemConfig struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// UtilityRates holds the per-dormitory utility pricing.
type UtilityRates struct {
	// WaterPerPerson is the flat monthly water charge per resident.
	WaterPerPerson decimal.Decimal `json:"water_per_person"`
	// ElectricUnitRate is the price per metered electricity unit.
	ElectricUnitRate decimal.Decimal `json:"electric_unit_rate"`
}

// BillingCycle holds the dormitory's billing-cycle settings.
type BillingCycle struct {
	BillingDay          int             `json:"billing_day"`           // day of month bills are issued
	GracePeriodDays     int             `json:"grace_period_days"`     // days between bill date and due date
	DueDay              int             `json:"due_day"`               // informational due day of month
	LateFeeRate         decimal.Decimal `json:"late_fee_rate"`         // fractional rate applied to overdue bills
	RequireMeterReading bool            `json:"require_meter_reading"` // reject bill creation without a current reading
}

// DormitoryConfig is the per-dormitory pricing and billing configuration.
// It is owned by the Dormitory aggregate and passed explicitly to the
// price calculator - there is no process-wide config singleton.
type DormitoryConfig struct {
	RoomTypes    map[string]RoomTypeConfig    `json:"room_types"`
	FloorRates   map[int]decimal.Decimal      `json:"floor_rates"` // adjustment per floor, may be negative
	ServiceItems map[string]ServiceItemConfig `json:"service_items"`
	Utilities    UtilityRates                 `json:"utilities"`
	BillingCycle BillingCycle                 `json:"billing_cycle"`
}

// Validate rejects configurations that could never produce a valid bill.
// Floor rates may be negative (discounts); prices and rates may not.
func (c DormitoryConfig) Validate() error {
	for id, rt := range c.RoomTypes {
		if rt.BasePrice.IsNegative() {
			return shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("room type %q has a negative base price", id))
		}
	}
	for id, item := range c.ServiceItems {
		if item.Amount.IsNegative() {
			return shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("service item %q has a negative amount", id))
		}
	}
	if c.Utilities.WaterPerPerson.IsNegative() || c.Utilities.ElectricUnitRate.IsNegative() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "utility rates cannot be negative")
	}
	if c.BillingCycle.GracePeriodDays < 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "grace period cannot be negative")
	}
	if c.BillingCycle.LateFeeRate.IsNegative() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "late fee rate cannot be negative")
	}
	return nil
}

// Value implements driver.Valuer so the config is stored as JSONB
func (c DormitoryConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for reading the config back from JSONB
func (c *DormitoryConfig) Scan(value interface{}) error {
	if value == nil {
		*c = DormitoryConfig{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DormitoryConfig: unsupported type")
	}
	if len(bytes) == 0 {
		*c = DormitoryConfig{}
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// RoomType resolves a room-type id against the catalog.
// The second return value is false when the id is unknown.
func (c DormitoryConfig) RoomType(id string) (RoomTypeConfig, bool) {
	rt, ok := c.RoomTypes[id]
	return rt, ok
}

// FloorRate returns the configured adjustment for a floor, zero when absent.
func (c DormitoryConfig) FloorRate(floor int) decimal.Decimal {
	if rate, ok := c.FloorRates[floor]; ok {
		return rate
	}
	return decimal.Zero
}

// ServiceAmount returns the catalog amount for a service id, zero when absent.
func (c DormitoryConfig) ServiceAmount(id string) decimal.Decimal {
	if item, ok := c.ServiceItems[id]; ok {
		return item.Amount
	}
	return decimal.Zero
}
