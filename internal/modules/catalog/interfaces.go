package catalog

import (
	"context"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// RoomRepository defines the storage operations the catalog needs.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetByNumber(ctx context.Context, number string) (*domain.Room, error)
	List(ctx context.Context, f repository.RoomFilters) ([]domain.Room, int64, error)
	Update(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, id int64) error
}

// AllocationCounter reports live occupancy; the catalog consults it before
// shrinking capacity or deleting a room.
type AllocationCounter interface {
	CountCurrentByRoom(ctx context.Context, roomID int64) (int64, error)
}
