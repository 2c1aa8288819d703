package tenancy

import (
	"github.com/dormhub/backend/internal/domain/shared"
)

// Event types for the tenancy context
const (
	EventTypeTenantMovedIn  = "tenancy.tenant.moved_in"
	EventTypeTenantMovedOut = "tenancy.tenant.moved_out"
)

// TenantMovedInEvent is emitted when a tenant takes occupancy of a room
type TenantMovedInEvent struct {
	shared.BaseDomainEvent
	TenantName string `json:"tenant_name"`
}

// NewTenantMovedInEvent creates a new TenantMovedInEvent
func NewTenantMovedInEvent(t *Tenant) *TenantMovedInEvent {
	return &TenantMovedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantMovedIn, "Tenant", t.ID, t.DormitoryID),
		TenantName:      t.Name,
	}
}

// TenantMovedOutEvent is emitted when a tenant's move-out completes
type TenantMovedOutEvent struct {
	shared.BaseDomainEvent
	TenantName string `json:"tenant_name"`
}

// NewTenantMovedOutEvent creates a new TenantMovedOutEvent
func NewTenantMovedOutEvent(t *Tenant) *TenantMovedOutEvent {
	return &TenantMovedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantMovedOut, "Tenant", t.ID, t.DormitoryID),
		TenantName:      t.Name,
	}
}
