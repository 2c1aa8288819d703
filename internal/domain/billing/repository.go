package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dormhub/backend/internal/domain/shared"
)

// BillRepository defines the persistence interface for bills.
// Period uniqueness is enforced by the store at write time; Save and
// SaveWithLock surface it as a DUPLICATE_BILL domain error so the
// read-then-create race cannot produce silent duplicates.
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// FindActiveByRoomAndPeriod returns the non-voided, non-forced
	// bill holding the uniqueness slot for (room, period), nil when
	// the slot is free.
	FindActiveByRoomAndPeriod(ctx context.Context, dormitoryID uuid.UUID, roomNumber string, period BillingPeriod) (*Bill, error)
	// FindUnsettledByTenant returns the tenant's bills with status in
	// {PENDING, PARTIALLY_PAID, OVERDUE}, voided excluded.
	FindUnsettledByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Bill, error)
	// FindOverdueCandidates returns non-voided bills in PENDING or
	// PARTIALLY_PAID whose due date is before cutoff.
	FindOverdueCandidates(ctx context.Context, cutoff time.Time) ([]*Bill, error)
	FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Bill], error)
	FindByRoom(ctx context.Context, roomID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Bill], error)
	Save(ctx context.Context, bill *Bill) error
	SaveWithLock(ctx context.Context, bill *Bill) error
	Delete(ctx context.Context, id uuid.UUID) error
}
