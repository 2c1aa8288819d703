package metering

import (
	"fmt"
	"time"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UtilityType identifies the metered utility
type UtilityType string

const (
	UtilityWater    UtilityType = "WATER"
	UtilityElectric UtilityType = "ELECTRIC"
)

// IsValid checks if the utility type is valid
func (u UtilityType) IsValid() bool {
	return u == UtilityWater || u == UtilityElectric
}

// String returns the string representation of UtilityType
func (u UtilityType) String() string {
	return string(u)
}

// MeterReading is one entry in the append-only per-room meter log.
// Readings are never edited; corrections append a new reading.
type MeterReading struct {
	shared.BaseEntity
	DormitoryID     uuid.UUID   `json:"dormitory_id" gorm:"type:uuid;not null;index"`
	RoomID          uuid.UUID   `json:"room_id" gorm:"type:uuid;not null;index:idx_readings_room_utility"`
	UtilityType     UtilityType `json:"utility_type" gorm:"not null;index:idx_readings_room_utility"`
	PreviousReading int64       `json:"previous_reading" gorm:"not null"`
	CurrentReading  int64       `json:"current_reading" gorm:"not null"`
	UnitsUsed       int64       `json:"units_used" gorm:"not null"`
	RecordedAt      time.Time   `json:"recorded_at" gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MeterReading) TableName() string {
	return "meter_readings"
}

// NewMeterReading validates and creates a reading chained onto the
// previous one. A current value below the previous reading is operator
// error and is rejected rather than silently clamped.
func NewMeterReading(dormitoryID, roomID uuid.UUID, utility UtilityType, previous, current int64, recordedAt time.Time) (*MeterReading, error) {
	if dormitoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DORMITORY", "Dormitory ID cannot be empty")
	}
	if roomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	if !utility.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidReading,
			fmt.Sprintf("Unknown utility type %q", utility))
	}
	if current < 0 {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidReading, "Meter reading cannot be negative")
	}
	if current < previous {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidReading,
			fmt.Sprintf("Reading %d is below the previous reading %d; record a meter replacement instead", current, previous))
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return &MeterReading{
		BaseEntity:      shared.NewBaseEntity(),
		DormitoryID:     dormitoryID,
		RoomID:          roomID,
		UtilityType:     utility,
		PreviousReading: previous,
		CurrentReading:  current,
		UnitsUsed:       current - previous,
		RecordedAt:      recordedAt,
	}, nil
}
