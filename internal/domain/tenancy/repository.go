package tenancy

import (
	"context"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantRepository manages Tenant persistence
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByRoom(ctx context.Context, roomID uuid.UUID) (*Tenant, error)
	FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]Tenant, error)
	FindActiveByDormitory(ctx context.Context, dormitoryID uuid.UUID) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
	SaveWithLock(ctx context.Context, tenant *Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error)
}
