package metering

import (
	"github.com/dormhub/backend/internal/domain/shared"
)

// EventTypeMeterReadingRecorded is emitted for every appended reading
const EventTypeMeterReadingRecorded = "metering.reading.recorded"

// MeterReadingRecordedEvent notifies listeners that a reading landed
type MeterReadingRecordedEvent struct {
	shared.BaseDomainEvent
	RoomID          string      `json:"room_id"`
	Utility         UtilityType `json:"utility"`
	PreviousReading int64       `json:"previous_reading"`
	CurrentReading  int64       `json:"current_reading"`
	UnitsUsed       int64       `json:"units_used"`
}

// NewMeterReadingRecordedEvent creates a new MeterReadingRecordedEvent
func NewMeterReadingRecordedEvent(reading *MeterReading) *MeterReadingRecordedEvent {
	return &MeterReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterReadingRecorded, "MeterReading", reading.ID, reading.DormitoryID),
		RoomID:          reading.RoomID.String(),
		Utility:         reading.UtilityType,
		PreviousReading: reading.PreviousReading,
		CurrentReading:  reading.CurrentReading,
		UnitsUsed:       reading.UnitsUsed,
	}
}
