package dormitory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
)

// DormitoryService handles dormitory and room administration
type DormitoryService struct {
	dormRepo dormitory.DormitoryRepository
	roomRepo dormitory.RoomRepository
	logger   *zap.Logger
}

// NewDormitoryService creates a new DormitoryService
func NewDormitoryService(
	dormRepo dormitory.DormitoryRepository,
	roomRepo dormitory.RoomRepository,
	logger *zap.Logger,
) *DormitoryService {
	return &DormitoryService{
		dormRepo: dormRepo,
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// CreateDormitoryInput contains input for creating a dormitory
type CreateDormitoryInput struct {
	Name    string                    `json:"name" binding:"required"`
	Address string                    `json:"address"`
	Config  dormitory.DormitoryConfig `json:"config"`
}

// CreateDormitory creates a dormitory with its pricing configuration
func (s *DormitoryService) CreateDormitory(ctx context.Context, input CreateDormitoryInput) (*dormitory.Dormitory, error) {
	dorm, err := dormitory.NewDormitory(input.Name, input.Address, input.Config)
	if err != nil {
		return nil, err
	}
	if err := s.dormRepo.Save(ctx, dorm); err != nil {
		return nil, err
	}
	s.logger.Info("dormitory created",
		zap.String("dormitory_id", dorm.ID.String()),
		zap.String("name", dorm.Name))
	return dorm, nil
}

// GetDormitory loads a dormitory by id
func (s *DormitoryService) GetDormitory(ctx context.Context, id uuid.UUID) (*dormitory.Dormitory, error) {
	return s.dormRepo.FindByID(ctx, id)
}

// ListDormitories returns all dormitories matching the filter
func (s *DormitoryService) ListDormitories(ctx context.Context, filter shared.Filter) ([]dormitory.Dormitory, error) {
	return s.dormRepo.FindAll(ctx, filter)
}

// UpdateConfig replaces a dormitory's pricing configuration
func (s *DormitoryService) UpdateConfig(ctx context.Context, id uuid.UUID, config dormitory.DormitoryConfig) (*dormitory.Dormitory, error) {
	dorm, err := s.dormRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := dorm.UpdateConfig(config); err != nil {
		return nil, err
	}
	if err := s.dormRepo.Save(ctx, dorm); err != nil {
		return nil, err
	}
	s.logger.Info("dormitory config updated", zap.String("dormitory_id", id.String()))
	return dorm, nil
}

// CreateRoomInput contains input for adding a room to a dormitory
type CreateRoomInput struct {
	DormitoryID    uuid.UUID `json:"dormitory_id" binding:"required"`
	Number         string    `json:"number" binding:"required"`
	Floor          int       `json:"floor"`
	RoomTypeID     string    `json:"room_type_id" binding:"required"`
	ServiceItemIDs []string  `json:"service_item_ids"`
}

// CreateRoom adds a room to a dormitory. The room type must exist in
// the dormitory's catalog.
func (s *DormitoryService) CreateRoom(ctx context.Context, input CreateRoomInput) (*dormitory.Room, error) {
	dorm, err := s.dormRepo.FindByID(ctx, input.DormitoryID)
	if err != nil {
		return nil, err
	}
	if _, ok := dorm.Config.RoomType(input.RoomTypeID); !ok {
		return nil, shared.NewDomainError(shared.ErrCodeConfigurationMissing,
			"room type "+input.RoomTypeID+" is not configured for this dormitory")
	}
	if existing, err := s.roomRepo.FindByNumber(ctx, input.DormitoryID, input.Number); err == nil && existing != nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code,
			"room "+input.Number+" already exists in this dormitory")
	}

	room, err := dormitory.NewRoom(input.DormitoryID, input.Number, input.Floor, input.RoomTypeID)
	if err != nil {
		return nil, err
	}
	if len(input.ServiceItemIDs) > 0 {
		room.SetServiceItems(input.ServiceItemIDs)
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom loads a room by id
func (s *DormitoryService) GetRoom(ctx context.Context, id uuid.UUID) (*dormitory.Room, error) {
	return s.roomRepo.FindByID(ctx, id)
}

// ListRooms returns a dormitory's rooms
func (s *DormitoryService) ListRooms(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]dormitory.Room, error) {
	return s.roomRepo.FindByDormitory(ctx, dormitoryID, filter)
}

// UpdateRoomServices replaces the service items attached to a room
func (s *DormitoryService) UpdateRoomServices(ctx context.Context, roomID uuid.UUID, serviceItemIDs []string) (*dormitory.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.SetServiceItems(serviceItemIDs)
	if err := s.roomRepo.SaveWithLock(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}
