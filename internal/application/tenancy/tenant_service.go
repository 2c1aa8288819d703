package tenancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// RoomOccupancyCoordinator is the slice of the room status service
// tenancy needs for move-in and move-out.
type RoomOccupancyCoordinator interface {
	AssignTenant(ctx context.Context, roomID, tenantID uuid.UUID) (*dormitory.Room, error)
	ReleaseRoom(ctx context.Context, roomID uuid.UUID) (*dormitory.Room, error)
}

// TenantService handles move-in, move-out and special charges
type TenantService struct {
	tenantRepo tenancy.TenantRepository
	roomStatus RoomOccupancyCoordinator
	tx         shared.TransactionManager
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(
	tenantRepo tenancy.TenantRepository,
	roomStatus RoomOccupancyCoordinator,
	tx shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		roomStatus: roomStatus,
		tx:         tx,
		publisher:  publisher,
		logger:     logger,
	}
}

// MoveInInput contains input for registering a tenant into a room
type MoveInInput struct {
	DormitoryID       uuid.UUID `json:"dormitory_id" binding:"required"`
	RoomID            uuid.UUID `json:"room_id" binding:"required"`
	Name              string    `json:"name" binding:"required"`
	Phone             string    `json:"phone"`
	NumberOfResidents int       `json:"number_of_residents" binding:"required,min=1"`
}

// MoveIn registers a tenant and occupies the room. Tenant creation and
// the room status transition commit together or not at all.
func (s *TenantService) MoveIn(ctx context.Context, input MoveInInput) (*tenancy.Tenant, error) {
	if existing, err := s.tenantRepo.FindByRoom(ctx, input.RoomID); err == nil && existing != nil && existing.IsActive() {
		return nil, shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			"room already has an active tenant")
	}

	tenant, err := tenancy.NewTenant(input.DormitoryID, input.RoomID, input.Name, input.NumberOfResidents)
	if err != nil {
		return nil, err
	}
	tenant.Phone = input.Phone

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.tenantRepo.Save(ctx, tenant); err != nil {
			return err
		}
		_, err := s.roomStatus.AssignTenant(ctx, input.RoomID, tenant.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, tenant)
	s.logger.Info("tenant moved in",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("room_id", input.RoomID.String()))
	return tenant, nil
}

// StartMoveOut flags a tenant as moving out; billing continues until
// the move-out completes.
func (s *TenantService) StartMoveOut(ctx context.Context, tenantID uuid.UUID) (*tenancy.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := tenant.StartMoveOut(); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// CompleteMoveOut releases the room once the tenant's balance is
// settled. The domain rejects the move-out while anything is owed.
func (s *TenantService) CompleteMoveOut(ctx context.Context, tenantID uuid.UUID) (*tenancy.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	roomID := tenant.RoomID
	if err := tenant.CompleteMoveOut(); err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
			return err
		}
		if roomID == nil {
			return nil
		}
		_, err := s.roomStatus.ReleaseRoom(ctx, *roomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, tenant)
	s.logger.Info("tenant moved out", zap.String("tenant_id", tenantID.String()))
	return tenant, nil
}

// SpecialItemInput contains input for attaching a special charge
type SpecialItemInput struct {
	Name     string          `json:"name" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Duration int             `json:"duration" binding:"min=0"`
}

// AddSpecialItem attaches a recurring or fixed-duration extra charge
func (s *TenantService) AddSpecialItem(ctx context.Context, tenantID uuid.UUID, input SpecialItemInput) (*tenancy.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := tenant.AddSpecialItem(input.Name, input.Amount, input.Duration); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// RemoveSpecialItem detaches a special charge by item id
func (s *TenantService) RemoveSpecialItem(ctx context.Context, tenantID, itemID uuid.UUID) (*tenancy.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := tenant.RemoveSpecialItem(itemID); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenant loads a tenant by id
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, id)
}

// ListTenants returns a dormitory's tenants
func (s *TenantService) ListTenants(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]tenancy.Tenant, error) {
	return s.tenantRepo.FindByDormitory(ctx, dormitoryID, filter)
}

func (s *TenantService) publishEvents(ctx context.Context, tenant *tenancy.Tenant) {
	events := tenant.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish tenant events",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
	}
	tenant.ClearDomainEvents()
}
