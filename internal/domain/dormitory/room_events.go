package dormitory

import (
	"github.com/dormhub/backend/internal/domain/shared"
)

// Event types for the dormitory context
const (
	EventTypeRoomStatusChanged = "dormitory.room.status_changed"
	EventTypeRoomAbnormal      = "dormitory.room.abnormal_detected"
)

// RoomStatusChangedEvent is emitted whenever a room moves between statuses
type RoomStatusChangedEvent struct {
	shared.BaseDomainEvent
	RoomNumber string     `json:"room_number"`
	From       RoomStatus `json:"from"`
	To         RoomStatus `json:"to"`
}

// NewRoomStatusChangedEvent creates a new RoomStatusChangedEvent
func NewRoomStatusChangedEvent(room *Room, from, to RoomStatus) *RoomStatusChangedEvent {
	return &RoomStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomStatusChanged, "Room", room.ID, room.DormitoryID),
		RoomNumber:      room.Number,
		From:            from,
		To:              to,
	}
}

// RoomAbnormalEvent is emitted when metered usage appears on a room with
// no active tenant (possible unauthorized occupancy).
type RoomAbnormalEvent struct {
	shared.BaseDomainEvent
	RoomNumber string `json:"room_number"`
	UnitsUsed  int64  `json:"units_used"`
}

// NewRoomAbnormalEvent creates a new RoomAbnormalEvent
func NewRoomAbnormalEvent(room *Room, unitsUsed int64) *RoomAbnormalEvent {
	return &RoomAbnormalEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomAbnormal, "Room", room.ID, room.DormitoryID),
		RoomNumber:      room.Number,
		UnitsUsed:       unitsUsed,
	}
}
