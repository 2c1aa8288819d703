package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/tenancy"
)

// GormTenantRepository implements tenancy.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	var tenant tenancy.Tenant
	if err := dbFromContext(ctx, r.db).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindByRoom finds the tenant currently assigned to a room. Moved-out
// tenants drop their room reference, so at most one row matches.
func (r *GormTenantRepository) FindByRoom(ctx context.Context, roomID uuid.UUID) (*tenancy.Tenant, error) {
	var tenant tenancy.Tenant
	err := dbFromContext(ctx, r.db).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindByDormitory lists a dormitory's tenants
func (r *GormTenantRepository) FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]tenancy.Tenant, error) {
	var tenants []tenancy.Tenant
	query := dbFromContext(ctx, r.db).Model(&tenancy.Tenant{}).Where("dormitory_id = ?", dormitoryID)
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	query = applyFilter(query, filter, tenantSortFields)
	if err := query.Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// FindActiveByDormitory lists tenants that still occupy a room
func (r *GormTenantRepository) FindActiveByDormitory(ctx context.Context, dormitoryID uuid.UUID) ([]tenancy.Tenant, error) {
	var tenants []tenancy.Tenant
	err := dbFromContext(ctx, r.db).
		Where("dormitory_id = ? AND status IN ?",
			dormitoryID,
			[]tenancy.TenantStatus{tenancy.TenantStatusActive, tenancy.TenantStatusMovingOut}).
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *tenancy.Tenant) error {
	return dbFromContext(ctx, r.db).Save(tenant).Error
}

// SaveWithLock saves a tenant guarded by its optimistic-lock version
func (r *GormTenantRepository) SaveWithLock(ctx context.Context, tenant *tenancy.Tenant) error {
	result := dbFromContext(ctx, r.db).
		Model(tenant).
		Where("id = ? AND version = ?", tenant.ID, tenant.Version-1).
		Updates(map[string]interface{}{
			"room_id":             tenant.RoomID,
			"status":              tenant.Status,
			"number_of_residents": tenant.NumberOfResidents,
			"outstanding_balance": tenant.OutstandingBalance,
			"electricity_usage":   tenant.ElectricityUsage,
			"special_items":       tenant.SpecialItems,
			"has_meter_reading":   tenant.HasMeterReading,
			"version":             tenant.Version,
			"updated_at":          tenant.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a tenant
func (r *GormTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&tenancy.Tenant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByDormitory counts a dormitory's tenants
func (r *GormTenantRepository) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).
		Model(&tenancy.Tenant{}).
		Where("dormitory_id = ?", dormitoryID).
		Count(&count).Error
	return count, err
}
