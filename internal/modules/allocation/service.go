package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// Service orchestrates allocation writes: it authorizes the actor against
// the hostel-scoping policy, applies the bed-selection policy, and delegates
// to the ledger, whose constraints settle any race. Ledger conflicts are
// surfaced to the caller untouched; nothing here retries or picks a fallback
// bed beyond the explicit lowest-free-bed rule.
type Service struct {
	ledger Ledger
	rooms  RoomDirectory
	users  UserDirectory
	calc   *Calculator
}

func NewService(ledger Ledger, rooms RoomDirectory, users UserDirectory, calc *Calculator) *Service {
	return &Service{
		ledger: ledger,
		rooms:  rooms,
		users:  users,
		calc:   calc,
	}
}

// RequestAllocation houses a resident. When no bed number is given the
// lowest free bed is chosen; "room full" is a business conflict reported to
// the actor, never resolved silently.
func (s *Service) RequestAllocation(ctx context.Context, actor domain.Actor, req RequestAllocationRequest) (*domain.Allocation, error) {
	room, err := s.getRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	scope := domain.ResolveScope(actor)
	if !scope.CanManage(room.Hostel) {
		return nil, fmt.Errorf("%w: not allowed to allocate in hostel %s", ErrForbidden, room.Hostel)
	}

	if _, err := s.users.GetByID(ctx, req.ResidentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resident not found", ErrNotFound)
		}
		return nil, err
	}

	existing, err := s.ledger.CurrentByResident(ctx, req.ResidentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: resident already has a current allocation", ErrConflict)
	}

	snap, err := s.calc.Compute(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	var bed int
	if req.BedNumber != nil {
		bed = *req.BedNumber
		if bed < 1 || bed > room.Capacity {
			return nil, fmt.Errorf("%w: bed %d outside 1..%d", ErrValidation, bed, room.Capacity)
		}
		for _, taken := range snap.OccupiedBeds {
			if taken == bed {
				return nil, fmt.Errorf("%w: bed %d already occupied", ErrConflict, bed)
			}
		}
	} else {
		if len(snap.FreeBeds) == 0 {
			return nil, fmt.Errorf("%w: room full", ErrConflict)
		}
		bed = snap.FreeBeds[0]
	}

	start := time.Now()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	alloc := &domain.Allocation{
		ResidentID: req.ResidentID,
		RoomID:     room.ID,
		BedNumber:  bed,
		Status:     domain.AllocationCurrent,
		StartDate:  start,
	}
	// The pre-checks above give precise messages; the partial unique indexes
	// are the authority if another writer got there first.
	if err := s.ledger.Create(ctx, alloc); err != nil {
		return nil, conflictFromUnique(err, bed)
	}
	return alloc, nil
}

// EndAllocation moves a current allocation to "past".
func (s *Service) EndAllocation(ctx context.Context, actor domain.Actor, id int64, endDate time.Time) (*domain.Allocation, error) {
	alloc, room, err := s.visibleAllocation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !domain.ResolveScope(actor).CanManage(room.Hostel) {
		return nil, fmt.Errorf("%w: not allowed to manage allocations in hostel %s", ErrForbidden, room.Hostel)
	}

	if endDate.IsZero() {
		endDate = time.Now()
	}
	if endDate.Before(alloc.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrValidation)
	}

	return s.transition(ctx, id, domain.AllocationPast, &endDate)
}

// CancelAllocation voids a current allocation, ending it today.
func (s *Service) CancelAllocation(ctx context.Context, actor domain.Actor, id int64) (*domain.Allocation, error) {
	alloc, room, err := s.visibleAllocation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !domain.ResolveScope(actor).CanManage(room.Hostel) {
		return nil, fmt.Errorf("%w: not allowed to manage allocations in hostel %s", ErrForbidden, room.Hostel)
	}

	// Voiding a not-yet-started allocation still keeps end >= start.
	end := time.Now()
	if end.Before(alloc.StartDate) {
		end = alloc.StartDate
	}
	return s.transition(ctx, id, domain.AllocationCancelled, &end)
}

// ReassignBed moves a resident to another bed in the same room: the old
// allocation is cancelled and a replacement created, both or neither. A lost
// race for the new bed leaves the original allocation in place.
func (s *Service) ReassignBed(ctx context.Context, actor domain.Actor, id int64, newBed int) (*domain.Allocation, error) {
	alloc, room, err := s.visibleAllocation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !domain.ResolveScope(actor).CanManage(room.Hostel) {
		return nil, fmt.Errorf("%w: not allowed to manage allocations in hostel %s", ErrForbidden, room.Hostel)
	}

	if newBed < 1 || newBed > room.Capacity {
		return nil, fmt.Errorf("%w: bed %d outside 1..%d", ErrValidation, newBed, room.Capacity)
	}
	if newBed == alloc.BedNumber {
		return nil, fmt.Errorf("%w: resident already occupies bed %d", ErrValidation, newBed)
	}

	moved, err := s.ledger.Reassign(ctx, id, newBed, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrAllocationNotCurrent) {
			return nil, ErrInvalidTransition
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, conflictFromUnique(err, newBed)
	}
	return moved, nil
}

// DeleteAllocation hard-deletes a terminal allocation record.
func (s *Service) DeleteAllocation(ctx context.Context, actor domain.Actor, id int64) error {
	_, room, err := s.visibleAllocation(ctx, actor, id)
	if err != nil {
		return err
	}
	if !domain.ResolveScope(actor).CanManage(room.Hostel) {
		return fmt.Errorf("%w: not allowed to manage allocations in hostel %s", ErrForbidden, room.Hostel)
	}

	err = s.ledger.Delete(ctx, id)
	if errors.Is(err, repository.ErrAllocationStillCurrent) {
		return fmt.Errorf("%w: current allocation must be cancelled before deletion", ErrConflict)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// GetAllocation returns one allocation if the actor's scope covers it.
func (s *Service) GetAllocation(ctx context.Context, actor domain.Actor, id int64) (*domain.Allocation, error) {
	alloc, _, err := s.visibleAllocation(ctx, actor, id)
	return alloc, err
}

// ListAllocations returns allocations pre-filtered by the actor's scope:
// residents see their own records, wardens their hostel, admin and HMC
// everything.
func (s *Service) ListAllocations(ctx context.Context, actor domain.Actor, f repository.AllocationFilters) ([]domain.Allocation, error) {
	scope := domain.ResolveScope(actor)
	switch scope.Kind {
	case domain.ScopeOwnAllocations:
		f.ResidentID = actor.ID
		f.Hostel = ""
	case domain.ScopeSingleHostel:
		f.Hostel = scope.Hostel
	}
	return s.ledger.List(ctx, f)
}

// RoomAvailability returns the live snapshot for one room.
func (s *Service) RoomAvailability(ctx context.Context, roomID int64) (*RoomAvailability, error) {
	return s.calc.Compute(ctx, roomID)
}

// HostelAvailability returns the aggregated snapshot for one hostel.
func (s *Service) HostelAvailability(ctx context.Context, hostel string) (*HostelAvailability, error) {
	return s.calc.ComputeForHostel(ctx, hostel)
}

func (s *Service) getRoom(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: room not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) transition(ctx context.Context, id int64, to domain.AllocationStatus, endDate *time.Time) (*domain.Allocation, error) {
	alloc, err := s.ledger.Transition(ctx, id, to, endDate)
	if errors.Is(err, repository.ErrAllocationNotCurrent) {
		return nil, ErrInvalidTransition
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// visibleAllocation loads an allocation and its room, returning NotFound
// when the record sits outside the actor's scope. Out-of-scope reads never
// answer Forbidden, which would confirm the record exists.
func (s *Service) visibleAllocation(ctx context.Context, actor domain.Actor, id int64) (*domain.Allocation, *domain.Room, error) {
	alloc, err := s.ledger.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	room, err := s.getRoom(ctx, alloc.RoomID)
	if err != nil {
		return nil, nil, err
	}

	scope := domain.ResolveScope(actor)
	if !scope.CanViewAllocation(actor, alloc.ResidentID, room.Hostel) {
		return nil, nil, ErrNotFound
	}
	return alloc, room, nil
}
