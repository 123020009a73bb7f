package allocation

import (
	"context"
	"time"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// Ledger defines the allocation storage operations the workflow needs.
type Ledger interface {
	Create(ctx context.Context, a *domain.Allocation) error
	GetByID(ctx context.Context, id int64) (*domain.Allocation, error)
	List(ctx context.Context, f repository.AllocationFilters) ([]domain.Allocation, error)
	Transition(ctx context.Context, id int64, to domain.AllocationStatus, endDate *time.Time) (*domain.Allocation, error)
	Reassign(ctx context.Context, id int64, newBed int, at time.Time) (*domain.Allocation, error)
	Delete(ctx context.Context, id int64) error
	CountCurrentByRoom(ctx context.Context, roomID int64) (int64, error)
	CurrentByResident(ctx context.Context, residentID int64) (*domain.Allocation, error)
}

// RoomDirectory provides room records and capacity bounds.
type RoomDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, f repository.RoomFilters) ([]domain.Room, int64, error)
}

// UserDirectory resolves resident identifiers.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
