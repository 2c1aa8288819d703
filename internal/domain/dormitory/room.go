package dormitory

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoomStatus represents the occupancy status of a room
type RoomStatus string

const (
	RoomStatusAvailable       RoomStatus = "AVAILABLE"         // no tenant, ready to let
	RoomStatusOccupied        RoomStatus = "OCCUPIED"          // active tenant, nothing billable yet
	RoomStatusAbnormal        RoomStatus = "ABNORMAL"          // usage detected without a tenant
	RoomStatusReadyForBilling RoomStatus = "READY_FOR_BILLING" // metered usage recorded, bill not yet created
	RoomStatusBilled          RoomStatus = "BILLED"            // unsettled bill exists for the current period
	RoomStatusPendingPayment  RoomStatus = "PENDING_PAYMENT"   // bill partially paid
	RoomStatusMaintenance     RoomStatus = "MAINTENANCE"       // taken out of service by an admin
)

// IsValid checks if the status is a valid RoomStatus
func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusAbnormal,
		RoomStatusReadyForBilling, RoomStatusBilled, RoomStatusPendingPayment,
		RoomStatusMaintenance:
		return true
	}
	return false
}

// String returns the string representation of RoomStatus
func (s RoomStatus) String() string {
	return string(s)
}

// RequiresTenant returns true for statuses that must have exactly one
// active tenant referencing the room.
func (s RoomStatus) RequiresTenant() bool {
	switch s {
	case RoomStatusOccupied, RoomStatusReadyForBilling, RoomStatusBilled, RoomStatusPendingPayment:
		return true
	}
	return false
}

// roomTransitions is the authoritative transition table. Status writes
// happen only through Room methods, which consult this table first.
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomStatusAvailable:       {RoomStatusOccupied, RoomStatusAbnormal, RoomStatusMaintenance},
	RoomStatusAbnormal:        {RoomStatusOccupied, RoomStatusAvailable, RoomStatusMaintenance},
	RoomStatusOccupied:        {RoomStatusReadyForBilling, RoomStatusBilled, RoomStatusAvailable},
	RoomStatusReadyForBilling: {RoomStatusBilled, RoomStatusOccupied, RoomStatusAvailable},
	RoomStatusBilled:          {RoomStatusPendingPayment, RoomStatusOccupied, RoomStatusReadyForBilling, RoomStatusAvailable},
	RoomStatusPendingPayment:  {RoomStatusPendingPayment, RoomStatusOccupied, RoomStatusAvailable},
	RoomStatusMaintenance:     {RoomStatusAvailable, RoomStatusAbnormal},
}

// CanTransitionTo returns true when the transition table allows moving
// from the current status to the target.
func (s RoomStatus) CanTransitionTo(target RoomStatus) bool {
	for _, allowed := range roomTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ServiceItemIDs is a list of service-catalog ids stored as JSONB
type ServiceItemIDs []string

// Value implements driver.Valuer for JSONB storage
func (s ServiceItemIDs) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *ServiceItemIDs) Scan(value interface{}) error {
	if value == nil {
		*s = ServiceItemIDs{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ServiceItemIDs: unsupported type")
	}
	if len(bytes) == 0 {
		*s = ServiceItemIDs{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Room is a rentable unit within a dormitory. Its status and tenant
// reference are mutated only through the methods below; application
// code must route every change through the room status coordinator.
type Room struct {
	shared.DormitoryAggregateRoot
	Number         string         `json:"number" gorm:"not null;index"`
	Floor          int            `json:"floor" gorm:"not null"`
	RoomTypeID     string         `json:"room_type_id" gorm:"not null"`
	Status         RoomStatus     `json:"status" gorm:"not null;default:'AVAILABLE'"`
	TenantID       *uuid.UUID     `json:"tenant_id" gorm:"type:uuid"`
	ServiceItemIDs ServiceItemIDs `json:"service_item_ids" gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Room) TableName() string {
	return "rooms"
}

// NewRoom creates a new room in AVAILABLE status
func NewRoom(dormitoryID uuid.UUID, number string, floor int, roomTypeID string) (*Room, error) {
	if dormitoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DORMITORY", "Dormitory ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ROOM_NUMBER", "Room number cannot be empty")
	}
	if roomTypeID == "" {
		return nil, shared.NewDomainError("INVALID_ROOM_TYPE", "Room type ID cannot be empty")
	}
	return &Room{
		DormitoryAggregateRoot: shared.NewDormitoryAggregateRoot(dormitoryID),
		Number:                 number,
		Floor:                  floor,
		RoomTypeID:             roomTypeID,
		Status:                 RoomStatusAvailable,
		ServiceItemIDs:         ServiceItemIDs{},
	}, nil
}

// HasActiveTenant returns true when a tenant currently occupies the room
func (r *Room) HasActiveTenant() bool {
	return r.TenantID != nil && *r.TenantID != uuid.Nil
}

// transitionTo applies a status change after checking the transition table
// and the tenant-reference invariants.
func (r *Room) transitionTo(target RoomStatus) error {
	if r.Status == target {
		// re-applying the current status is a no-op, not a conflict
		return nil
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s cannot move from %s to %s", r.Number, r.Status, target))
	}
	if target.RequiresTenant() && !r.HasActiveTenant() {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s cannot enter %s without an active tenant", r.Number, target))
	}
	from := r.Status
	r.Status = target
	if target == RoomStatusAvailable {
		r.TenantID = nil
	}
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewRoomStatusChangedEvent(r, from, target))
	return nil
}

// AssignTenant places a tenant into an available or abnormal room
func (r *Room) AssignTenant(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if r.HasActiveTenant() {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s already has an active tenant", r.Number))
	}
	r.TenantID = &tenantID
	if err := r.transitionTo(RoomStatusOccupied); err != nil {
		r.TenantID = nil
		return err
	}
	return nil
}

// ReleaseTenant removes the tenant reference and returns the room to
// AVAILABLE. Outstanding-balance settlement is a precondition enforced
// by the caller, not here.
func (r *Room) ReleaseTenant() error {
	if !r.HasActiveTenant() {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s has no active tenant to release", r.Number))
	}
	return r.transitionTo(RoomStatusAvailable)
}

// MarkAbnormal flags unattended usage on a vacant room
func (r *Room) MarkAbnormal() error {
	return r.transitionTo(RoomStatusAbnormal)
}

// ResolveAbnormal returns an abnormal room to AVAILABLE after investigation
func (r *Room) ResolveAbnormal() error {
	if r.Status != RoomStatusAbnormal {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s is not abnormal", r.Number))
	}
	return r.transitionTo(RoomStatusAvailable)
}

// MarkReadyForBilling flags that metered usage exists for the current period
func (r *Room) MarkReadyForBilling() error {
	return r.transitionTo(RoomStatusReadyForBilling)
}

// MarkBilled records that an unsettled bill now exists for the room
func (r *Room) MarkBilled() error {
	return r.transitionTo(RoomStatusBilled)
}

// MarkPendingPayment records a partial payment on the room's bill
func (r *Room) MarkPendingPayment() error {
	return r.transitionTo(RoomStatusPendingPayment)
}

// MarkOccupied returns the room to plain OCCUPIED (bill settled or reverted)
func (r *Room) MarkOccupied() error {
	return r.transitionTo(RoomStatusOccupied)
}

// StartMaintenance takes the room out of service. Only rooms without an
// active tenant can enter maintenance.
func (r *Room) StartMaintenance() error {
	if r.HasActiveTenant() {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s cannot enter maintenance while occupied", r.Number))
	}
	return r.transitionTo(RoomStatusMaintenance)
}

// EndMaintenance returns the room to service
func (r *Room) EndMaintenance() error {
	if r.Status != RoomStatusMaintenance {
		return shared.NewDomainError(shared.ErrCodeRoomStateConflict,
			fmt.Sprintf("Room %s is not under maintenance", r.Number))
	}
	return r.transitionTo(RoomStatusAvailable)
}

// SetServiceItems replaces the room's subscribed service-catalog ids
func (r *Room) SetServiceItems(ids []string) {
	r.ServiceItemIDs = append(ServiceItemIDs{}, ids...)
	r.Touch()
	r.IncrementVersion()
}
