package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

// AllocationRepository is the storage side of the allocation ledger. It owns
// the allocation rows exclusively; every availability figure elsewhere is
// recomputed from queries against it, never cached.
type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

type allocationModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	ResidentID int64      `gorm:"column:resident_id;index;uniqueIndex:ux_allocations_resident_current,where:status = 'current'"`
	RoomID     int64      `gorm:"column:room_id;index;uniqueIndex:ux_allocations_room_bed_current,where:status = 'current'"`
	BedNumber  int        `gorm:"column:bed_number;uniqueIndex:ux_allocations_room_bed_current,where:status = 'current'"`
	Status     string     `gorm:"column:status;index;size:16"`
	StartDate  time.Time  `gorm:"column:start_date"`
	EndDate    *time.Time `gorm:"column:end_date"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (allocationModel) TableName() string { return "room_allocations" }

func toDomainAllocation(m allocationModel) *domain.Allocation {
	return &domain.Allocation{
		ID:         m.ID,
		ResidentID: m.ResidentID,
		RoomID:     m.RoomID,
		BedNumber:  m.BedNumber,
		Status:     domain.AllocationStatus(m.Status),
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// AllocationFilters narrows an allocation listing. Zero values mean
// "no filter".
type AllocationFilters struct {
	RoomID     int64
	ResidentID int64
	Hostel     string
	Status     domain.AllocationStatus
	Limit      int
	Offset     int
}

// Create inserts a new allocation row. Uniqueness of (room, bed) and of the
// resident among current allocations is enforced by partial indexes; callers
// classify violations with UniqueViolation.
func (r *AllocationRepository) Create(ctx context.Context, a *domain.Allocation) error {
	m := allocationModel{
		ResidentID: a.ResidentID,
		RoomID:     a.RoomID,
		BedNumber:  a.BedNumber,
		Status:     string(a.Status),
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*a = *toDomainAllocation(m)
	return nil
}

func (r *AllocationRepository) GetByID(ctx context.Context, id int64) (*domain.Allocation, error) {
	var m allocationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainAllocation(m), nil
}

// List returns allocations matching the filters, newest start date first.
func (r *AllocationRepository) List(ctx context.Context, f AllocationFilters) ([]domain.Allocation, error) {
	q := r.db.WithContext(ctx).Model(&allocationModel{})
	if f.RoomID != 0 {
		q = q.Where("room_allocations.room_id = ?", f.RoomID)
	}
	if f.ResidentID != 0 {
		q = q.Where("room_allocations.resident_id = ?", f.ResidentID)
	}
	if f.Hostel != "" {
		q = q.Joins("JOIN rooms ON rooms.id = room_allocations.room_id").
			Where("rooms.hostel = ?", f.Hostel)
	}
	if f.Status != "" {
		q = q.Where("room_allocations.status = ?", f.Status)
	}
	q = q.Order("room_allocations.start_date DESC, room_allocations.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var models []allocationModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Allocation, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainAllocation(m))
	}
	return out, nil
}

// Transition moves a current allocation to a terminal status. The status
// guard sits in the WHERE clause so a double transition loses without a
// read-then-write race: zero affected rows means the record either does not
// exist or already left "current".
func (r *AllocationRepository) Transition(ctx context.Context, id int64, to domain.AllocationStatus, endDate *time.Time) (*domain.Allocation, error) {
	res := r.db.WithContext(ctx).Model(&allocationModel{}).
		Where("id = ? AND status = ?", id, domain.AllocationCurrent).
		Updates(map[string]any{
			"status":     string(to),
			"end_date":   endDate,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var m allocationModel
		if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
			return nil, err
		}
		return nil, ErrAllocationNotCurrent
	}
	return r.GetByID(ctx, id)
}

// Reassign cancels a current allocation and creates its replacement on a new
// bed within one transaction. If the new bed is taken the unique index fails
// the insert and the cancellation rolls back, so the resident keeps the
// original bed. The replacement keeps the original start date; the cancelled
// row preserves the audit trail of the move.
func (r *AllocationRepository) Reassign(ctx context.Context, id int64, newBed int, at time.Time) (*domain.Allocation, error) {
	var created allocationModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old allocationModel
		if err := tx.First(&old, id).Error; err != nil {
			return err
		}
		if old.Status != string(domain.AllocationCurrent) {
			return ErrAllocationNotCurrent
		}

		end := at
		res := tx.Model(&allocationModel{}).
			Where("id = ? AND status = ?", id, domain.AllocationCurrent).
			Updates(map[string]any{
				"status":     string(domain.AllocationCancelled),
				"end_date":   &end,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAllocationNotCurrent
		}

		created = allocationModel{
			ResidentID: old.ResidentID,
			RoomID:     old.RoomID,
			BedNumber:  newBed,
			Status:     string(domain.AllocationCurrent),
			StartDate:  old.StartDate,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainAllocation(created), nil
}

// Delete hard-deletes a non-current allocation.
func (r *AllocationRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, domain.AllocationCurrent).
		Delete(&allocationModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var m allocationModel
		if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
			return err
		}
		return ErrAllocationStillCurrent
	}
	return nil
}

// CountCurrentByRoom returns the number of current allocations in a room.
func (r *AllocationRepository) CountCurrentByRoom(ctx context.Context, roomID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&allocationModel{}).
		Where("room_id = ? AND status = ?", roomID, domain.AllocationCurrent).
		Count(&cnt).Error
	return cnt, err
}

// CurrentByResident returns the resident's current allocation, or nil if the
// resident is not housed.
func (r *AllocationRepository) CurrentByResident(ctx context.Context, residentID int64) (*domain.Allocation, error) {
	var m allocationModel
	err := r.db.WithContext(ctx).
		Where("resident_id = ? AND status = ?", residentID, domain.AllocationCurrent).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainAllocation(m), nil
}
