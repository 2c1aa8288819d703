package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// RoomStatusCoordinator is the slice of the room status service the
// billing lifecycle needs. Room status writes always go through it.
type RoomStatusCoordinator interface {
	MarkBilled(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error)
	ReturnToBillable(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error)
	OnPaymentRecorded(ctx context.Context, roomID uuid.UUID, settled bool) (*dormitory.Room, error)
}

// BillingService drives the bill lifecycle: price calculation, bill
// creation (single and batch), deletion, revert to draft, and the
// overdue sweep. All multi-aggregate mutations run inside one
// transaction so room status and bill state never diverge.
type BillingService struct {
	billRepo   billing.BillRepository
	roomRepo   dormitory.RoomRepository
	dormRepo   dormitory.DormitoryRepository
	tenantRepo tenancy.TenantRepository
	roomStatus RoomStatusCoordinator
	balance    *BalanceService
	tx         shared.TransactionManager
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(
	billRepo billing.BillRepository,
	roomRepo dormitory.RoomRepository,
	dormRepo dormitory.DormitoryRepository,
	tenantRepo tenancy.TenantRepository,
	roomStatus RoomStatusCoordinator,
	balance *BalanceService,
	tx shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		billRepo:   billRepo,
		roomRepo:   roomRepo,
		dormRepo:   dormRepo,
		tenantRepo: tenantRepo,
		roomStatus: roomStatus,
		balance:    balance,
		tx:         tx,
		publisher:  publisher,
		logger:     logger,
	}
}

// CalculateRoomPrice computes the current monthly charge preview for a
// room. A missing room type yields a zero quote with the
// ConfigurationMissing flag set rather than an error.
func (s *BillingService) CalculateRoomPrice(ctx context.Context, roomID uuid.UUID) (*billing.PriceQuote, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	dorm, err := s.dormRepo.FindByID(ctx, room.DormitoryID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.activeTenant(ctx, roomID)
	if err != nil {
		return nil, err
	}
	quote := billing.CalculatePrice(room, dorm.Config, tenant)
	return &quote, nil
}

// activeTenant returns the room's active tenant, nil when vacant
func (s *BillingService) activeTenant(ctx context.Context, roomID uuid.UUID) (*tenancy.Tenant, error) {
	tenant, err := s.tenantRepo.FindByRoom(ctx, roomID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return nil, nil
		}
		return nil, err
	}
	if tenant != nil && !tenant.IsActive() {
		return nil, nil
	}
	return tenant, nil
}

// CreateBillInput contains input for creating one bill
type CreateBillInput struct {
	RoomID         uuid.UUID `json:"room_id" binding:"required"`
	Month          int       `json:"month" binding:"required,min=1,max=12"`
	Year           int       `json:"year" binding:"required"`
	ForceDuplicate bool      `json:"force_duplicate"`
}

// CreateBill issues a bill for a room and period. The period
// uniqueness pre-check is advisory; the store's partial unique index
// is authoritative, so two racing creates cannot both slip through.
func (s *BillingService) CreateBill(ctx context.Context, input CreateBillInput) (*billing.Bill, error) {
	period, err := billing.NewBillingPeriod(input.Month, input.Year)
	if err != nil {
		return nil, err
	}
	room, err := s.roomRepo.FindByID(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	dorm, err := s.dormRepo.FindByID(ctx, room.DormitoryID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.activeTenant(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("room %s has no active tenant to bill", room.Number))
	}

	if dorm.Config.BillingCycle.RequireMeterReading {
		if !tenant.HasMeterReading {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidReading,
				fmt.Sprintf("room %s has no meter reading for this period", room.Number))
		}
		if tenant.ElectricityUsage.UnitsUsed == 0 {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidReading,
				fmt.Sprintf("room %s reports zero usage, reading looks stale", room.Number))
		}
	}

	if !input.ForceDuplicate {
		existing, err := s.billRepo.FindActiveByRoomAndPeriod(ctx, dorm.ID, room.Number, period)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError(shared.ErrCodeDuplicateBill,
				fmt.Sprintf("bill %s already exists for room %s period %s; re-submit with force_duplicate to override",
					existing.ID, room.Number, period))
		}
	}

	quote := billing.CalculatePrice(room, dorm.Config, tenant)
	if quote.ConfigurationMissing {
		return nil, shared.NewDomainError(shared.ErrCodeConfigurationMissing,
			fmt.Sprintf("room type %q is not configured for dormitory %s", room.RoomTypeID, dorm.Name))
	}

	items := billing.BuildBillItems(quote, dorm.Config, tenant)
	dueDate := time.Now().AddDate(0, 0, dorm.Config.BillingCycle.GracePeriodDays)
	bill, err := billing.NewBill(dorm.ID, room.ID, room.Number, period, dueDate, items)
	if err != nil {
		return nil, err
	}
	bill.AttachTenant(tenant.ID, tenant.Name)
	if input.ForceDuplicate {
		bill.MarkForcedDuplicate()
	}

	// Fixed-duration special charges burn one cycle per issued bill,
	// and the meter flag resets so next period needs a fresh reading.
	tenant.TickSpecialItems()
	tenant.ResetBillingPeriod()

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.billRepo.Save(ctx, bill); err != nil {
			return err
		}
		if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
			return err
		}
		_, err := s.roomStatus.MarkBilled(ctx, room.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.balance.Recompute(ctx, tenant.ID); err != nil {
		s.logger.Warn("balance recompute after bill creation failed",
			zap.String("tenant_id", tenant.ID.String()), zap.Error(err))
	}
	s.publishBillEvents(ctx, bill)
	s.logger.Info("bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("room", room.Number),
		zap.String("period", period.String()),
		zap.String("total", bill.TotalAmount.StringFixed(2)))
	return bill, nil
}

// BatchBillResult reports the outcome of one room in a batch run
type BatchBillResult struct {
	RoomID     uuid.UUID  `json:"room_id"`
	RoomNumber string     `json:"room_number"`
	BillID     *uuid.UUID `json:"bill_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// CreateBillsBatchInput contains input for batch bill creation
type CreateBillsBatchInput struct {
	DormitoryID    uuid.UUID   `json:"dormitory_id" binding:"required"`
	RoomIDs        []uuid.UUID `json:"room_ids"` // empty means every occupied room
	Month          int         `json:"month" binding:"required,min=1,max=12"`
	Year           int         `json:"year" binding:"required"`
	ForceDuplicate bool        `json:"force_duplicate"`
}

// CreateBillsBatch issues bills for many rooms. Rooms are processed
// independently: one room's failure is reported in its result entry
// and never rolls back the others.
func (s *BillingService) CreateBillsBatch(ctx context.Context, input CreateBillsBatchInput) ([]BatchBillResult, error) {
	rooms, err := s.batchTargets(ctx, input)
	if err != nil {
		return nil, err
	}

	results := make([]BatchBillResult, 0, len(rooms))
	for _, room := range rooms {
		result := BatchBillResult{RoomID: room.ID, RoomNumber: room.Number}
		bill, err := s.CreateBill(ctx, CreateBillInput{
			RoomID:         room.ID,
			Month:          input.Month,
			Year:           input.Year,
			ForceDuplicate: input.ForceDuplicate,
		})
		if err != nil {
			result.Error = err.Error()
		} else {
			result.BillID = &bill.ID
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *BillingService) batchTargets(ctx context.Context, input CreateBillsBatchInput) ([]dormitory.Room, error) {
	if len(input.RoomIDs) > 0 {
		rooms := make([]dormitory.Room, 0, len(input.RoomIDs))
		for _, id := range input.RoomIDs {
			room, err := s.roomRepo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			rooms = append(rooms, *room)
		}
		return rooms, nil
	}

	var rooms []dormitory.Room
	for _, status := range []dormitory.RoomStatus{dormitory.RoomStatusReadyForBilling, dormitory.RoomStatusOccupied} {
		batch, err := s.roomRepo.FindByStatus(ctx, input.DormitoryID, status)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, batch...)
	}
	return rooms, nil
}

// GetBill loads a bill by id
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	return s.billRepo.FindByID(ctx, id)
}

// ListBills returns a dormitory's bills
func (s *BillingService) ListBills(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Bill], error) {
	return s.billRepo.FindByDormitory(ctx, dormitoryID, filter)
}

// DeleteBill removes an unsettled bill and returns the room to a
// billable state so a corrected bill can be issued for the period.
func (s *BillingService) DeleteBill(ctx context.Context, billID uuid.UUID) error {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return err
	}
	if err := bill.CanDelete(); err != nil {
		return err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.billRepo.Delete(ctx, billID); err != nil {
			return err
		}
		_, err := s.roomStatus.ReturnToBillable(ctx, bill.RoomID)
		return err
	})
	if err != nil {
		return err
	}

	s.recomputeIfTenant(ctx, bill)
	s.logger.Info("bill deleted",
		zap.String("bill_id", billID.String()),
		zap.String("room", bill.RoomNumber))
	return nil
}

// RevertBillToDraft voids a bill instead of deleting it, keeping the
// row for audit while freeing the period uniqueness slot.
func (s *BillingService) RevertBillToDraft(ctx context.Context, billID uuid.UUID, reason string) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := bill.Void(reason); err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
			return err
		}
		_, err := s.roomStatus.ReturnToBillable(ctx, bill.RoomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recomputeIfTenant(ctx, bill)
	s.publishBillEvents(ctx, bill)
	return bill, nil
}

// SweepOverdueBills marks every unpaid bill past its due date as
// OVERDUE. Safe to run repeatedly and concurrently: already-overdue
// bills are skipped and racing writers lose on the version check.
func (s *BillingService) SweepOverdueBills(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.billRepo.FindOverdueCandidates(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, bill := range candidates {
		if !bill.MarkOverdue(now) {
			continue
		}
		if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == shared.ErrConcurrencyConflict.Code {
				// another sweep or a payment got there first
				continue
			}
			s.logger.Error("overdue sweep failed to save bill",
				zap.String("bill_id", bill.ID.String()), zap.Error(err))
			continue
		}
		marked++
		s.recomputeIfTenant(ctx, bill)
		s.publishBillEvents(ctx, bill)
	}

	if marked > 0 {
		s.logger.Info("overdue sweep finished",
			zap.Int("candidates", len(candidates)),
			zap.Int("marked", marked))
	}
	return marked, nil
}

func (s *BillingService) recomputeIfTenant(ctx context.Context, bill *billing.Bill) {
	if bill.TenantID == nil {
		return
	}
	if _, err := s.balance.Recompute(ctx, *bill.TenantID); err != nil {
		s.logger.Warn("balance recompute failed",
			zap.String("tenant_id", bill.TenantID.String()), zap.Error(err))
	}
}

func (s *BillingService) publishBillEvents(ctx context.Context, bill *billing.Bill) {
	events := bill.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish bill events",
			zap.String("bill_id", bill.ID.String()), zap.Error(err))
	}
	bill.ClearDomainEvents()
}
