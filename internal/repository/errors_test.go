package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostelms/internal/database"
	"hostelms/internal/domain"
)

func setupLedger(t *testing.T) *AllocationRepository {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	// In-memory SQLite lives per connection; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return NewAllocationRepository(db)
}

func currentAllocation(residentID, roomID int64, bed int) *domain.Allocation {
	return &domain.Allocation{
		ResidentID: residentID,
		RoomID:     roomID,
		BedNumber:  bed,
		Status:     domain.AllocationCurrent,
		StartDate:  time.Now(),
	}
}

func TestUniqueViolation_SQLiteDuplicateBed(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, currentAllocation(1, 10, 1)))

	err := repo.Create(ctx, currentAllocation(2, 10, 1))
	require.Error(t, err)
	assert.Equal(t, UniqueCurrentBed, UniqueViolation(err))
}

func TestUniqueViolation_SQLiteDuplicateResident(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, currentAllocation(1, 10, 1)))

	err := repo.Create(ctx, currentAllocation(1, 11, 2))
	require.Error(t, err)
	assert.Equal(t, UniqueCurrentResident, UniqueViolation(err))
}

func TestUniqueViolation_TerminalRowsUnconstrained(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	first := currentAllocation(1, 10, 1)
	require.NoError(t, repo.Create(ctx, first))

	end := time.Now()
	_, err := repo.Transition(ctx, first.ID, domain.AllocationPast, &end)
	require.NoError(t, err)

	// The partial indexes only guard "current" rows, so a freed bed can be
	// handed out again.
	assert.NoError(t, repo.Create(ctx, currentAllocation(2, 10, 1)))
}

func TestUniqueViolation_PostgresConstraintName(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: UniqueCurrentResident}
	assert.Equal(t, UniqueCurrentResident, UniqueViolation(err))

	assert.Equal(t, "", UniqueViolation(gorm.ErrRecordNotFound))
	assert.Equal(t, "", UniqueViolation(nil))
}

func TestAllocationLedger_RacingCreatesOneWinner(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, currentAllocation(int64(i+1), 10, 1))
		}(i)
	}
	wg.Wait()

	var conflicts int
	for _, err := range errs {
		if err != nil {
			assert.Equal(t, UniqueCurrentBed, UniqueViolation(err))
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts, "exactly one writer must lose the bed")
}
