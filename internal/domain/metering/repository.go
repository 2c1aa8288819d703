package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MeterReadingRepository manages the append-only meter reading log
type MeterReadingRepository interface {
	Append(ctx context.Context, reading *MeterReading) error
	// FindLatest returns the most recent reading by RecordedAt for a
	// (room, utility) pair, or nil when none exists.
	FindLatest(ctx context.Context, roomID uuid.UUID, utility UtilityType) (*MeterReading, error)
	FindByRoom(ctx context.Context, roomID uuid.UUID, utility UtilityType, limit int) ([]MeterReading, error)
	// FindSince returns readings recorded at or after the given time,
	// used to decide whether the current period already has usage.
	FindSince(ctx context.Context, roomID uuid.UUID, utility UtilityType, since time.Time) ([]MeterReading, error)
}
