package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dormhub/backend/internal/domain/metering"
	"github.com/dormhub/backend/internal/domain/shared"
)

// GormMeterReadingRepository implements metering.MeterReadingRepository
// using GORM. The reading log is append-only; there is no update path.
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// Append inserts a new reading
func (r *GormMeterReadingRepository) Append(ctx context.Context, reading *metering.MeterReading) error {
	return dbFromContext(ctx, r.db).Create(reading).Error
}

// FindLatest returns the most recent reading for a room and utility
func (r *GormMeterReadingRepository) FindLatest(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType) (*metering.MeterReading, error) {
	var reading metering.MeterReading
	err := dbFromContext(ctx, r.db).
		Where("room_id = ? AND utility_type = ?", roomID, utility).
		Order("recorded_at DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reading, nil
}

// FindByRoom lists the most recent readings for a room, newest first
func (r *GormMeterReadingRepository) FindByRoom(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType, limit int) ([]metering.MeterReading, error) {
	var readings []metering.MeterReading
	query := dbFromContext(ctx, r.db).
		Where("room_id = ? AND utility_type = ?", roomID, utility).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// FindSince returns readings recorded at or after the given time
func (r *GormMeterReadingRepository) FindSince(ctx context.Context, roomID uuid.UUID, utility metering.UtilityType, since time.Time) ([]metering.MeterReading, error) {
	var readings []metering.MeterReading
	err := dbFromContext(ctx, r.db).
		Where("room_id = ? AND utility_type = ? AND recorded_at >= ?", roomID, utility, since).
		Order("recorded_at ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
