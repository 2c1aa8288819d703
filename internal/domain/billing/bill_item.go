package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// BillItemType is the closed set of charge line kinds
type BillItemType string

const (
	BillItemRent     BillItemType = "RENT"
	BillItemWater    BillItemType = "WATER"
	BillItemElectric BillItemType = "ELECTRIC"
	BillItemOther    BillItemType = "OTHER"
)

// IsValid checks if the item type is valid
func (t BillItemType) IsValid() bool {
	switch t {
	case BillItemRent, BillItemWater, BillItemElectric, BillItemOther:
		return true
	}
	return false
}

// BillItem is one line of a bill. UnitPrice and Quantity are optional
// audit detail; Amount is authoritative.
type BillItem struct {
	Type      BillItemType     `json:"type"`
	Label     string           `json:"label"`
	Amount    decimal.Decimal  `json:"amount"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Quantity  *int64           `json:"quantity,omitempty"`
}

// NewBillItem creates a plain bill item without unit breakdown
func NewBillItem(itemType BillItemType, label string, amount decimal.Decimal) BillItem {
	return BillItem{Type: itemType, Label: label, Amount: amount}
}

// NewMeteredBillItem creates a bill item carrying its unit-price audit trail
func NewMeteredBillItem(itemType BillItemType, label string, unitPrice decimal.Decimal, quantity int64) BillItem {
	amount := unitPrice.Mul(decimal.NewFromInt(quantity))
	return BillItem{
		Type:      itemType,
		Label:     label,
		Amount:    amount,
		UnitPrice: &unitPrice,
		Quantity:  &quantity,
	}
}

// BillItems is the ordered list of bill lines stored as JSONB
type BillItems []BillItem

// Value implements driver.Valuer for JSONB storage
func (b BillItems) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB retrieval
func (b *BillItems) Scan(value interface{}) error {
	if value == nil {
		*b = BillItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan BillItems: unsupported type")
	}
	if len(bytes) == 0 {
		*b = BillItems{}
		return nil
	}
	return json.Unmarshal(bytes, b)
}

// Total sums the authoritative amounts of all lines
func (b BillItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b {
		total = total.Add(item.Amount)
	}
	return total
}
