package billing

import (
	"github.com/shopspring/decimal"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// ChargeBreakdown itemizes the components of a room's monthly charge
type ChargeBreakdown struct {
	BasePrice          decimal.Decimal `json:"base_price"`
	FloorRate          decimal.Decimal `json:"floor_rate"`
	AdditionalServices decimal.Decimal `json:"additional_services"`
	SpecialItems       decimal.Decimal `json:"special_items"`
	Water              decimal.Decimal `json:"water"`
	Electricity        decimal.Decimal `json:"electricity"`
}

// PriceQuote is the result of a price calculation. When the room's
// type is missing from the dormitory config, ConfigurationMissing is
// set and every component is zero; callers decide whether that is an
// error (bill creation) or just informational (price preview).
type PriceQuote struct {
	Total                decimal.Decimal `json:"total"`
	Breakdown            ChargeBreakdown `json:"breakdown"`
	ConfigurationMissing bool            `json:"configuration_missing"`
}

// CalculatePrice computes the itemized monthly charge for a room. Pure
// function of its inputs; tenant may be nil, in which case all
// occupancy-dependent components (special items, water, electricity)
// are zero. Floor adjustments may push individual components negative
// but the total is clamped at zero.
func CalculatePrice(room *dormitory.Room, config dormitory.DormitoryConfig, tenant *tenancy.Tenant) PriceQuote {
	roomType, ok := config.RoomType(room.RoomTypeID)
	if !ok {
		return PriceQuote{Total: decimal.Zero, ConfigurationMissing: true}
	}

	breakdown := ChargeBreakdown{
		BasePrice: roomType.BasePrice,
		FloorRate: config.FloorRate(room.Floor),
	}

	services := decimal.Zero
	for _, id := range room.ServiceItemIDs {
		services = services.Add(config.ServiceAmount(id))
	}
	breakdown.AdditionalServices = services

	if tenant != nil {
		breakdown.SpecialItems = tenant.SpecialItems.ActiveTotal()
		if tenant.NumberOfResidents > 0 {
			breakdown.Water = config.Utilities.WaterPerPerson.Mul(decimal.NewFromInt(int64(tenant.NumberOfResidents)))
		}
		if tenant.ElectricityUsage.UnitsUsed > 0 {
			breakdown.Electricity = config.Utilities.ElectricUnitRate.Mul(decimal.NewFromInt(tenant.ElectricityUsage.UnitsUsed))
		}
	}

	total := breakdown.BasePrice.
		Add(breakdown.FloorRate).
		Add(breakdown.AdditionalServices).
		Add(breakdown.SpecialItems).
		Add(breakdown.Water).
		Add(breakdown.Electricity)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return PriceQuote{Total: total, Breakdown: breakdown}
}

// BuildBillItems turns a quote into bill lines, one per non-zero
// component. Metered components keep their unit-price audit trail.
func BuildBillItems(quote PriceQuote, config dormitory.DormitoryConfig, tenant *tenancy.Tenant) BillItems {
	b := quote.Breakdown
	items := BillItems{}

	if !b.BasePrice.IsZero() {
		items = append(items, NewBillItem(BillItemRent, "Room rent", b.BasePrice))
	}
	if !b.FloorRate.IsZero() {
		items = append(items, NewBillItem(BillItemRent, "Floor adjustment", b.FloorRate))
	}
	if !b.AdditionalServices.IsZero() {
		items = append(items, NewBillItem(BillItemOther, "Additional services", b.AdditionalServices))
	}
	if !b.SpecialItems.IsZero() {
		items = append(items, NewBillItem(BillItemOther, "Special charges", b.SpecialItems))
	}
	if !b.Water.IsZero() && tenant != nil {
		items = append(items, NewMeteredBillItem(BillItemWater, "Water", config.Utilities.WaterPerPerson, int64(tenant.NumberOfResidents)))
	}
	if !b.Electricity.IsZero() && tenant != nil {
		items = append(items, NewMeteredBillItem(BillItemElectric, "Electricity", config.Utilities.ElectricUnitRate, tenant.ElectricityUsage.UnitsUsed))
	}
	return items
}
