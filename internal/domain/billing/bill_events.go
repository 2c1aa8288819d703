package billing

import (
	"github.com/shopspring/decimal"

	"github.com/dormhub/backend/internal/domain/shared"
)

// Event types for the billing context
const (
	EventTypeBillCreated    = "billing.bill.created"
	EventTypePaymentApplied = "billing.bill.payment_applied"
	EventTypeBillPaid       = "billing.bill.paid"
	EventTypeBillOverdue    = "billing.bill.overdue"
	EventTypeBillVoided     = "billing.bill.voided"
)

// BillCreatedEvent is emitted when a bill is issued for a room
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	RoomNumber  string          `json:"room_number"`
	Period      string          `json:"period"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBillCreatedEvent creates a new BillCreatedEvent
func NewBillCreatedEvent(bill *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCreated, "Bill", bill.ID, bill.DormitoryID),
		RoomNumber:      bill.RoomNumber,
		Period:          bill.Period.String(),
		TotalAmount:     bill.TotalAmount,
	}
}

// PaymentAppliedEvent is emitted for every recorded payment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	RoomNumber string          `json:"room_number"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(bill *Bill, payment Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, "Bill", bill.ID, bill.DormitoryID),
		RoomNumber:      bill.RoomNumber,
		Amount:          payment.Amount,
		Method:          payment.Method,
		Remaining:       bill.RemainingAmount(),
	}
}

// BillPaidEvent is emitted when a bill reaches full settlement
type BillPaidEvent struct {
	shared.BaseDomainEvent
	RoomNumber  string          `json:"room_number"`
	Period      string          `json:"period"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBillPaidEvent creates a new BillPaidEvent
func NewBillPaidEvent(bill *Bill) *BillPaidEvent {
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaid, "Bill", bill.ID, bill.DormitoryID),
		RoomNumber:      bill.RoomNumber,
		Period:          bill.Period.String(),
		TotalAmount:     bill.TotalAmount,
	}
}

// BillOverdueEvent is emitted when the overdue sweep flags a bill
type BillOverdueEvent struct {
	shared.BaseDomainEvent
	RoomNumber string          `json:"room_number"`
	Period     string          `json:"period"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// NewBillOverdueEvent creates a new BillOverdueEvent
func NewBillOverdueEvent(bill *Bill) *BillOverdueEvent {
	return &BillOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillOverdue, "Bill", bill.ID, bill.DormitoryID),
		RoomNumber:      bill.RoomNumber,
		Period:          bill.Period.String(),
		Remaining:       bill.RemainingAmount(),
	}
}

// BillVoidedEvent is emitted when a bill reverts to draft
type BillVoidedEvent struct {
	shared.BaseDomainEvent
	RoomNumber string `json:"room_number"`
	Period     string `json:"period"`
	Reason     string `json:"reason"`
}

// NewBillVoidedEvent creates a new BillVoidedEvent
func NewBillVoidedEvent(bill *Bill, reason string) *BillVoidedEvent {
	return &BillVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillVoided, "Bill", bill.ID, bill.DormitoryID),
		RoomNumber:      bill.RoomNumber,
		Period:          bill.Period.String(),
		Reason:          reason,
	}
}
