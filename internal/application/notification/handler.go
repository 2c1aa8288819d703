package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/metering"
	"github.com/dormhub/backend/internal/domain/shared"
)

// Notifier delivers a short operator-facing message to an external
// chat channel. Delivery is fire-and-forget; failures are logged and
// never block the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// EventNotificationHandler turns domain events into chat messages:
// bill issued, payment received, meter reading recorded, abnormal
// room usage detected.
type EventNotificationHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewEventNotificationHandler creates a new EventNotificationHandler
func NewEventNotificationHandler(notifier Notifier, logger *zap.Logger) *EventNotificationHandler {
	return &EventNotificationHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *EventNotificationHandler) EventTypes() []string {
	return []string{
		billing.EventTypeBillCreated,
		billing.EventTypePaymentApplied,
		billing.EventTypeBillPaid,
		billing.EventTypeBillOverdue,
		metering.EventTypeMeterReadingRecorded,
		dormitory.EventTypeRoomAbnormal,
	}
}

// Handle formats and sends the notification for one event
func (h *EventNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var title, message string

	switch e := event.(type) {
	case *billing.BillCreatedEvent:
		title = "Bill issued"
		message = fmt.Sprintf("Room %s: bill for %s, total %s THB", e.RoomNumber, e.Period, e.TotalAmount.StringFixed(2))
	case *billing.PaymentAppliedEvent:
		title = "Payment received"
		message = fmt.Sprintf("Room %s: %s THB via %s, %s THB remaining", e.RoomNumber, e.Amount.StringFixed(2), e.Method, e.Remaining.StringFixed(2))
	case *billing.BillPaidEvent:
		title = "Bill settled"
		message = fmt.Sprintf("Room %s: bill for %s fully paid (%s THB)", e.RoomNumber, e.Period, e.TotalAmount.StringFixed(2))
	case *billing.BillOverdueEvent:
		title = "Bill overdue"
		message = fmt.Sprintf("Room %s: bill for %s is overdue, %s THB outstanding", e.RoomNumber, e.Period, e.Remaining.StringFixed(2))
	case *metering.MeterReadingRecordedEvent:
		title = "Meter reading recorded"
		message = fmt.Sprintf("Room %s: %s reading %d (%d units used)", e.RoomID, e.Utility, e.CurrentReading, e.UnitsUsed)
	case *dormitory.RoomAbnormalEvent:
		title = "Abnormal room usage"
		message = fmt.Sprintf("Room %s shows %d units of usage with no active tenant", e.RoomNumber, e.UnitsUsed)
	default:
		return nil
	}

	if err := h.notifier.Notify(ctx, title, message); err != nil {
		// notification delivery never fails the triggering operation
		h.logger.Warn("notification delivery failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
	return nil
}
