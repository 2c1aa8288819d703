package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dormhub/backend/internal/domain/dormitory"
	"github.com/dormhub/backend/internal/domain/shared"
)

// GormDormitoryRepository implements dormitory.DormitoryRepository using GORM
type GormDormitoryRepository struct {
	db *gorm.DB
}

// NewGormDormitoryRepository creates a new GormDormitoryRepository
func NewGormDormitoryRepository(db *gorm.DB) *GormDormitoryRepository {
	return &GormDormitoryRepository{db: db}
}

// FindByID finds a dormitory by its ID
func (r *GormDormitoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*dormitory.Dormitory, error) {
	var dorm dormitory.Dormitory
	if err := dbFromContext(ctx, r.db).First(&dorm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dorm, nil
}

// FindAll lists dormitories
func (r *GormDormitoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]dormitory.Dormitory, error) {
	var dorms []dormitory.Dormitory
	query := dbFromContext(ctx, r.db).Model(&dormitory.Dormitory{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	query = applyFilter(query, filter, dormitorySortFields)
	if err := query.Find(&dorms).Error; err != nil {
		return nil, err
	}
	return dorms, nil
}

// Save creates or updates a dormitory
func (r *GormDormitoryRepository) Save(ctx context.Context, dorm *dormitory.Dormitory) error {
	return dbFromContext(ctx, r.db).Save(dorm).Error
}

// Delete removes a dormitory
func (r *GormDormitoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&dormitory.Dormitory{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts dormitories matching the filter
func (r *GormDormitoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).Model(&dormitory.Dormitory{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	err := query.Count(&count).Error
	return count, err
}
