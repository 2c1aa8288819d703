package metering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/metering"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// RoomStatusReconciler is the slice of the room status service the
// meter log needs after a reading lands.
type RoomStatusReconciler interface {
	HandleMeterReading(ctx context.Context, roomID uuid.UUID, unitsUsed int64, now time.Time) (*dormitory.Room, error)
}

// MeterService records utility readings and keeps the tenant usage
// snapshot and room status in step with the meter log.
type MeterService struct {
	readingRepo metering.MeterReadingRepository
	tenantRepo  tenancy.TenantRepository
	roomStatus  RoomStatusReconciler
	tx          shared.TransactionManager
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewMeterService creates a new MeterService
func NewMeterService(
	readingRepo metering.MeterReadingRepository,
	tenantRepo tenancy.TenantRepository,
	roomStatus RoomStatusReconciler,
	tx shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *MeterService {
	return &MeterService{
		readingRepo: readingRepo,
		tenantRepo:  tenantRepo,
		roomStatus:  roomStatus,
		tx:          tx,
		publisher:   publisher,
		logger:      logger,
	}
}

// RecordReadingInput contains input for recording a meter reading
type RecordReadingInput struct {
	DormitoryID    uuid.UUID            `json:"dormitory_id" binding:"required"`
	RoomID         uuid.UUID            `json:"room_id" binding:"required"`
	Utility        metering.UtilityType `json:"utility" binding:"required"`
	CurrentReading int64                `json:"current_reading"`
	RecordedAt     time.Time            `json:"recorded_at"`
}

// RecordReading appends a reading chained onto the room's latest one.
// Electric readings refresh the tenant's usage snapshot, and the room
// status coordinator reconciles the room afterwards: usage without a
// tenant flags the room abnormal, usage on an occupied room makes it
// ready for billing.
func (s *MeterService) RecordReading(ctx context.Context, input RecordReadingInput) (*metering.MeterReading, error) {
	previous := int64(0)
	latest, err := s.readingRepo.FindLatest(ctx, input.RoomID, input.Utility)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if latest != nil {
		previous = latest.CurrentReading
	}

	reading, err := metering.NewMeterReading(
		input.DormitoryID, input.RoomID, input.Utility,
		previous, input.CurrentReading, input.RecordedAt)
	if err != nil {
		return nil, err
	}

	tenant, err := s.activeTenant(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.readingRepo.Append(ctx, reading); err != nil {
			return err
		}
		if tenant != nil && input.Utility == metering.UtilityElectric {
			tenant.RecordElectricityUsage(reading.PreviousReading, reading.CurrentReading)
			if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Status reconciliation is separate from the append; a conflict
	// here leaves the reading recorded, which is correct for an
	// append-only log.
	if _, err := s.roomStatus.HandleMeterReading(ctx, input.RoomID, reading.UnitsUsed, time.Now()); err != nil {
		s.logger.Warn("room status reconciliation after reading failed",
			zap.String("room_id", input.RoomID.String()), zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, metering.NewMeterReadingRecordedEvent(reading)); err != nil {
		s.logger.Warn("failed to publish meter reading event",
			zap.String("room_id", input.RoomID.String()), zap.Error(err))
	}

	s.logger.Info("meter reading recorded",
		zap.String("room_id", input.RoomID.String()),
		zap.String("utility", input.Utility.String()),
		zap.Int64("units_used", reading.UnitsUsed))
	return reading, nil
}

// LatestReading returns the most recent reading for a room and
// utility, nil when the room has no readings yet.
func (s *MeterService) LatestReading(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType) (*metering.MeterReading, error) {
	latest, err := s.readingRepo.FindLatest(ctx, roomID, utility)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return latest, nil
}

// ReadingHistory lists the most recent readings for a room, newest first
func (s *MeterService) ReadingHistory(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType, limit int) ([]metering.MeterReading, error) {
	if limit <= 0 {
		limit = 12
	}
	return s.readingRepo.FindByRoom(ctx, roomID, utility, limit)
}

func (s *MeterService) activeTenant(ctx context.Context, roomID uuid.UUID) (*tenancy.Tenant, error) {
	tenant, err := s.tenantRepo.FindByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if tenant != nil && !tenant.IsActive() {
		return nil, nil
	}
	return tenant, nil
}
