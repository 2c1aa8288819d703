package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
)

// GormRoomRepository implements dormitory.RoomRepository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID finds a room by its ID
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*dormitory.Room, error) {
	var room dormitory.Room
	if err := dbFromContext(ctx, r.db).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// FindByNumber finds a room by its number within a dormitory
func (r *GormRoomRepository) FindByNumber(ctx context.Context, dormitoryID uuid.UUID, number string) (*dormitory.Room, error) {
	var room dormitory.Room
	err := dbFromContext(ctx, r.db).
		Where("dormitory_id = ? AND number = ?", dormitoryID, number).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// FindByDormitory lists a dormitory's rooms
func (r *GormRoomRepository) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]dormitory.Room, error) {
	var rooms []dormitory.Room
	query := applyFilter(
		dbFromContext(ctx, r.db).Model(&dormitory.Room{}).Where("dormitory_id = ?", dormitoryID),
		filter, roomSortFields)
	if err := query.Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// FindByStatus lists a dormitory's rooms in a given status
func (r *GormRoomRepository) FindByStatus(ctx context.Context, dormitoryID uuid.UUID, status dormitory.RoomStatus) ([]dormitory.Room, error) {
	var rooms []dormitory.Room
	err := dbFromContext(ctx, r.db).
		Where("dormitory_id = ? AND status = ?", dormitoryID, status).
		Order("number ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// Save creates or updates a room
func (r *GormRoomRepository) Save(ctx context.Context, room *dormitory.Room) error {
	err := dbFromContext(ctx, r.db).Save(room).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock saves a room guarded by its optimistic-lock version.
// A stale writer loses here rather than silently resurrecting an old
// room status.
func (r *GormRoomRepository) SaveWithLock(ctx context.Context, room *dormitory.Room) error {
	result := dbFromContext(ctx, r.db).
		Model(room).
		Where("id = ? AND version = ?", room.ID, room.Version-1).
		Updates(map[string]interface{}{
			"status":           room.Status,
			"tenant_id":        room.TenantID,
			"service_item_ids": room.ServiceItemIDs,
			"version":          room.Version,
			"updated_at":       room.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a room
func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&dormitory.Room{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByDormitory counts a dormitory's rooms
func (r *GormRoomRepository) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).
		Model(&dormitory.Room{}).
		Where("dormitory_id = ?", dormitoryID).
		Count(&count).Error
	return count, err
}
