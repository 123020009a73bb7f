package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// Mock repositories
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Create(ctx context.Context, a *domain.Allocation) error {
	args := m.Called(ctx, a)
	if a != nil && args.Error(0) == nil {
		a.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockLedger) GetByID(ctx context.Context, id int64) (*domain.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}

func (m *MockLedger) List(ctx context.Context, f repository.AllocationFilters) ([]domain.Allocation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockLedger) Transition(ctx context.Context, id int64, to domain.AllocationStatus, endDate *time.Time) (*domain.Allocation, error) {
	args := m.Called(ctx, id, to, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}

func (m *MockLedger) Reassign(ctx context.Context, id int64, newBed int, at time.Time) (*domain.Allocation, error) {
	args := m.Called(ctx, id, newBed, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}

func (m *MockLedger) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedger) CountCurrentByRoom(ctx context.Context, roomID int64) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) CurrentByResident(ctx context.Context, residentID int64) (*domain.Allocation, error) {
	args := m.Called(ctx, residentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}

type MockRoomDirectory struct {
	mock.Mock
}

func (m *MockRoomDirectory) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomDirectory) List(ctx context.Context, f repository.RoomFilters) ([]domain.Room, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Room), args.Get(1).(int64), args.Error(2)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newTestService(ledger *MockLedger, rooms *MockRoomDirectory, users *MockUserDirectory) *Service {
	return NewService(ledger, rooms, users, NewCalculator(ledger, rooms))
}

func testRoom() *domain.Room {
	return &domain.Room{
		ID:       10,
		Number:   "LB-101",
		Building: domain.HostelLohitBoys,
		Floor:    1,
		Hostel:   domain.HostelLohitBoys,
		Type:     domain.RoomDouble,
		Capacity: 2,
	}
}

func currentFilters(roomID int64) repository.AllocationFilters {
	return repository.AllocationFilters{RoomID: roomID, Status: domain.AllocationCurrent}
}

var adminActor = domain.Actor{ID: 1, Role: domain.RoleAdmin}

func TestService_RequestAllocation_ExplicitBed(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42, Role: domain.RoleStudent}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(nil, nil)
	ledger.On("List", mock.Anything, currentFilters(10)).Return([]domain.Allocation{}, nil)
	ledger.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ledger, rooms, users)
	bed := 2
	alloc, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
		BedNumber:  &bed,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, alloc.BedNumber)
	assert.Equal(t, domain.AllocationCurrent, alloc.Status)
	assert.Equal(t, int64(999), alloc.ID)
	ledger.AssertExpectations(t)
}

func TestService_RequestAllocation_AutoSelectsLowestFreeBed(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	room := testRoom()
	room.Capacity = 3

	rooms.On("GetByID", mock.Anything, int64(10)).Return(room, nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(nil, nil)
	// Beds 1 and 3 are taken, so bed 2 is the lowest free one.
	ledger.On("List", mock.Anything, currentFilters(10)).Return([]domain.Allocation{
		{ID: 1, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent},
		{ID: 2, RoomID: 10, BedNumber: 3, Status: domain.AllocationCurrent},
	}, nil)
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Allocation) bool {
		return a.BedNumber == 2
	})).Return(nil)

	svc := newTestService(ledger, rooms, users)
	alloc, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, alloc.BedNumber)
	ledger.AssertExpectations(t)
}

func TestService_RequestAllocation_RoomFull(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(nil, nil)
	ledger.On("List", mock.Anything, currentFilters(10)).Return([]domain.Allocation{
		{ID: 1, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent},
		{ID: 2, RoomID: 10, BedNumber: 2, Status: domain.AllocationCurrent},
	}, nil)

	svc := newTestService(ledger, rooms, users)
	_, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "room full")
	ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_RequestAllocation_BedAlreadyOccupied(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(nil, nil)
	ledger.On("List", mock.Anything, currentFilters(10)).Return([]domain.Allocation{
		{ID: 1, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent},
	}, nil)

	svc := newTestService(ledger, rooms, users)
	bed := 1
	_, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
		BedNumber:  &bed,
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "bed 1 already occupied")
}

func TestService_RequestAllocation_BedOutOfRange(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(nil, nil)
	ledger.On("List", mock.Anything, currentFilters(10)).Return([]domain.Allocation{}, nil)

	svc := newTestService(ledger, rooms, users)
	bed := 3 // capacity is 2
	_, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
		BedNumber:  &bed,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_RequestAllocation_WardenOtherHostelForbidden(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	room := testRoom()
	room.Hostel = domain.HostelPapumBoys
	rooms.On("GetByID", mock.Anything, int64(10)).Return(room, nil)

	svc := newTestService(ledger, rooms, users)
	warden := domain.Actor{ID: 5, Role: domain.RoleWardenLohitBoys}
	_, err := svc.RequestAllocation(context.Background(), warden, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
	})

	assert.ErrorIs(t, err, ErrForbidden)
	ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_RequestAllocation_StudentForbidden(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)

	svc := newTestService(ledger, rooms, users)
	student := domain.Actor{ID: 42, Role: domain.RoleStudent}
	_, err := svc.RequestAllocation(context.Background(), student, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
	})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_RequestAllocation_ResidentAlreadyHoused(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 3, BedNumber: 1, Status: domain.AllocationCurrent,
	}, nil)

	svc := newTestService(ledger, rooms, users)
	_, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already has a current allocation")
}

func TestService_RequestAllocation_RoomNotFound(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(ledger, rooms, users)
	_, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     99,
	})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_RequestAllocation_LostRaceMapsToConflict(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42}, nil)
	ledger.On("CurrentByResident", mock.Anything, int64(42)).Return(nil, nil)
	ledger.On("List", mock.Anything, currentFilters(10)).Return([]domain.Allocation{}, nil)
	// Another writer took the bed between the snapshot and the insert.
	ledger.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: repository.UniqueCurrentBed,
	})

	svc := newTestService(ledger, rooms, users)
	bed := 1
	_, err := svc.RequestAllocation(context.Background(), adminActor, RequestAllocationRequest{
		ResidentID: 42,
		RoomID:     10,
		BedNumber:  &bed,
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "bed 1 already occupied")
}

func TestService_EndAllocation_Success(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1,
		Status: domain.AllocationCurrent, StartDate: start,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	ledger.On("Transition", mock.Anything, int64(7), domain.AllocationPast, &end).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1,
		Status: domain.AllocationPast, StartDate: start, EndDate: &end,
	}, nil)

	svc := newTestService(ledger, rooms, users)
	alloc, err := svc.EndAllocation(context.Background(), adminActor, 7, end)

	assert.NoError(t, err)
	assert.Equal(t, domain.AllocationPast, alloc.Status)
	ledger.AssertExpectations(t)
}

func TestService_EndAllocation_AlreadyEnded(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1,
		Status: domain.AllocationPast, StartDate: start,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	ledger.On("Transition", mock.Anything, int64(7), domain.AllocationPast, mock.Anything).
		Return(nil, repository.ErrAllocationNotCurrent)

	svc := newTestService(ledger, rooms, users)
	_, err := svc.EndAllocation(context.Background(), adminActor, 7, time.Now())

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_EndAllocation_EndBeforeStart(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1,
		Status: domain.AllocationCurrent, StartDate: start,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)

	svc := newTestService(ledger, rooms, users)
	_, err := svc.EndAllocation(context.Background(), adminActor, 7, start.AddDate(0, 0, -1))

	assert.ErrorIs(t, err, ErrValidation)
	ledger.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CancelAllocation_FutureStartClampsEndDate(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	start := time.Now().Add(48 * time.Hour)
	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1,
		Status: domain.AllocationCurrent, StartDate: start,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	// The cancelled record must never end before it starts.
	ledger.On("Transition", mock.Anything, int64(7), domain.AllocationCancelled, mock.MatchedBy(func(end *time.Time) bool {
		return end != nil && end.Equal(start)
	})).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1,
		Status: domain.AllocationCancelled, StartDate: start, EndDate: &start,
	}, nil)

	svc := newTestService(ledger, rooms, users)
	alloc, err := svc.CancelAllocation(context.Background(), adminActor, 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.AllocationCancelled, alloc.Status)
	ledger.AssertExpectations(t)
}

func TestService_ReassignBed_SameBed(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)

	svc := newTestService(ledger, rooms, users)
	_, err := svc.ReassignBed(context.Background(), adminActor, 7, 1)

	assert.ErrorIs(t, err, ErrValidation)
	ledger.AssertNotCalled(t, "Reassign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReassignBed_TargetBedTaken(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	ledger.On("Reassign", mock.Anything, int64(7), 2, mock.Anything).Return(nil, &pgconn.PgError{
		Code:           "23505",
		ConstraintName: repository.UniqueCurrentBed,
	})

	svc := newTestService(ledger, rooms, users)
	_, err := svc.ReassignBed(context.Background(), adminActor, 7, 2)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "bed 2 already occupied")
}

func TestService_GetAllocation_OwnRecord(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)

	svc := newTestService(ledger, rooms, users)
	student := domain.Actor{ID: 42, Role: domain.RoleStudent}
	alloc, err := svc.GetAllocation(context.Background(), student, 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), alloc.ID)
}

func TestService_GetAllocation_OutOfScopeReportsNotFound(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)

	svc := newTestService(ledger, rooms, users)
	// Another student must not learn the record exists.
	other := domain.Actor{ID: 43, Role: domain.RoleStudent}
	_, err := svc.GetAllocation(context.Background(), other, 7)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestService_ListAllocations_ScopedFilters(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	svc := newTestService(ledger, rooms, users)

	// Students are pinned to their own records even if they ask for more.
	ledger.On("List", mock.Anything, repository.AllocationFilters{ResidentID: 42}).
		Return([]domain.Allocation{}, nil).Once()
	student := domain.Actor{ID: 42, Role: domain.RoleStudent}
	_, err := svc.ListAllocations(context.Background(), student, repository.AllocationFilters{
		ResidentID: 7,
		Hostel:     domain.HostelLohitBoys,
	})
	assert.NoError(t, err)

	// Wardens are pinned to their hostel.
	ledger.On("List", mock.Anything, repository.AllocationFilters{Hostel: domain.HostelPapumBoys}).
		Return([]domain.Allocation{}, nil).Once()
	warden := domain.Actor{ID: 5, Role: domain.RoleWardenPapumBoys}
	_, err = svc.ListAllocations(context.Background(), warden, repository.AllocationFilters{
		Hostel: domain.HostelLohitGirls,
	})
	assert.NoError(t, err)

	ledger.AssertExpectations(t)
}

func TestService_DeleteAllocation_CurrentRejected(t *testing.T) {
	ledger := new(MockLedger)
	rooms := new(MockRoomDirectory)
	users := new(MockUserDirectory)

	ledger.On("GetByID", mock.Anything, int64(7)).Return(&domain.Allocation{
		ID: 7, ResidentID: 42, RoomID: 10, BedNumber: 1, Status: domain.AllocationCurrent,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(10)).Return(testRoom(), nil)
	ledger.On("Delete", mock.Anything, int64(7)).Return(repository.ErrAllocationStillCurrent)

	svc := newTestService(ledger, rooms, users)
	err := svc.DeleteAllocation(context.Background(), adminActor, 7)

	assert.ErrorIs(t, err, ErrConflict)
}
