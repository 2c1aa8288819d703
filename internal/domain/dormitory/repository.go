package dormitory

import (
	"context"

	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DormitoryRepository manages Dormitory persistence
type DormitoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Dormitory, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Dormitory, error)
	Save(ctx context.Context, dorm *Dormitory) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// RoomRepository manages Room persistence
type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	FindByNumber(ctx context.Context, dormitoryID uuid.UUID, number string) (*Room, error)
	FindByDormitory(ctx context.Context, dormitoryID uuid.UUID, filter shared.Filter) ([]Room, error)
	FindByStatus(ctx context.Context, dormitoryID uuid.UUID, status RoomStatus) ([]Room, error)
	Save(ctx context.Context, room *Room) error
	// SaveWithLock updates the room guarded by its optimistic-lock version.
	// Returns a CONCURRENCY_CONFLICT domain error when the row moved on.
	SaveWithLock(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error)
}
