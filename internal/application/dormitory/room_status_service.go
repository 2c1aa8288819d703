package dormitory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
)

// RoomStatusService is the only writer of a room's occupancy status.
// Billing, payment, tenancy and metering all call into it instead of
// mutating room state inline, so every transition goes through the
// domain transition table exactly once. Each method re-reads the room
// before applying a transition; the optimistic lock on save rejects
// writers that raced against a newer status.
type RoomStatusService struct {
	roomRepo  dormitory.RoomRepository
	billRepo  billing.BillRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRoomStatusService creates a new RoomStatusService
func NewRoomStatusService(
	roomRepo dormitory.RoomRepository,
	billRepo billing.BillRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *RoomStatusService {
	return &RoomStatusService{
		roomRepo:  roomRepo,
		billRepo:  billRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// apply re-reads the room, runs the transition and saves under the
// optimistic lock. The fresh read prevents a stale caller from
// resurrecting a status another operator already moved past.
func (s *RoomStatusService) apply(ctx context.Context, roomID uuid.UUID, mutate func(*dormitory.Room) error) (*dormitory.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := mutate(room); err != nil {
		return nil, err
	}
	if err := s.roomRepo.SaveWithLock(ctx, room); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, room)
	return room, nil
}

func (s *RoomStatusService) publishEvents(ctx context.Context, room *dormitory.Room) {
	events := room.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish room events",
			zap.String("room_id", room.ID.String()),
			zap.Error(err))
	}
	room.ClearDomainEvents()
}

// AssignTenant moves the room to OCCUPIED with the given tenant
func (s *RoomStatusService) AssignTenant(ctx context.Context, roomID, tenantID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.AssignTenant(tenantID)
	})
}

// ReleaseRoom returns the room to AVAILABLE and clears its tenant.
// Balance settlement is the caller's precondition, not checked here.
func (s *RoomStatusService) ReleaseRoom(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.ReleaseTenant()
	})
}

// MarkBilled records that a bill now exists for the room
func (s *RoomStatusService) MarkBilled(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.MarkBilled()
	})
}

// ReturnToBillable undoes a billed state after a bill is deleted or
// reverted to draft, so a corrected bill can be issued for the period.
func (s *RoomStatusService) ReturnToBillable(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.MarkReadyForBilling()
	})
}

// OnPaymentRecorded reflects a payment outcome on the room: full
// settlement returns it to OCCUPIED, a partial payment parks it in
// PENDING_PAYMENT.
func (s *RoomStatusService) OnPaymentRecorded(ctx context.Context, roomID uuid.UUID, settled bool) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		if settled {
			return room.MarkOccupied()
		}
		return room.MarkPendingPayment()
	})
}

// HandleMeterReading reconciles room status after a reading is
// recorded. Usage on a room without an active tenant flags it
// ABNORMAL; usage on an occupied room without an open bill for the
// current period makes it READY_FOR_BILLING.
func (s *RoomStatusService) HandleMeterReading(ctx context.Context, roomID uuid.UUID, unitsUsed int64, now time.Time) (*dormitory.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if unitsUsed <= 0 {
		return room, nil
	}

	if !room.HasActiveTenant() {
		return s.apply(ctx, roomID, func(room *dormitory.Room) error {
			if err := room.MarkAbnormal(); err != nil {
				return err
			}
			room.AddDomainEvent(dormitory.NewRoomAbnormalEvent(room, unitsUsed))
			return nil
		})
	}

	if room.Status != dormitory.RoomStatusOccupied {
		return room, nil
	}
	period, err := billing.NewBillingPeriod(int(now.Month()), now.Year())
	if err != nil {
		return nil, err
	}
	existing, err := s.billRepo.FindActiveByRoomAndPeriod(ctx, room.DormitoryID, room.Number, period)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return room, nil
	}
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.MarkReadyForBilling()
	})
}

// ResolveAbnormal clears an abnormal flag back to AVAILABLE
func (s *RoomStatusService) ResolveAbnormal(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.ResolveAbnormal()
	})
}

// StartMaintenance takes a non-occupied room out of service
func (s *RoomStatusService) StartMaintenance(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.StartMaintenance()
	})
}

// EndMaintenance returns a maintenance room to AVAILABLE
func (s *RoomStatusService) EndMaintenance(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error) {
	return s.apply(ctx, roomID, func(room *dormitory.Room) error {
		return room.EndMaintenance()
	})
}
