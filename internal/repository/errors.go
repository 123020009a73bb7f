package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrAllocationNotCurrent is returned when a lifecycle transition is
	// attempted on an allocation that already left the "current" status.
	ErrAllocationNotCurrent = errors.New("allocation is not current")

	// ErrAllocationStillCurrent is returned when a hard delete is attempted
	// on a current allocation. Current records must be cancelled first so the
	// audit trail survives.
	ErrAllocationStillCurrent = errors.New("allocation is still current")
)

// Names of the partial unique indexes that enforce the ledger invariants.
// The index is the authority under concurrent writes; racing inserts for the
// same bed (or the same resident) resolve to exactly one success.
const (
	UniqueCurrentBed      = "ux_allocations_room_bed_current"
	UniqueCurrentResident = "ux_allocations_resident_current"
)

// UniqueViolation returns the name of the violated unique index, or "" if
// err is not a uniqueness error. PostgreSQL reports the constraint name in
// the driver error; SQLite lists the violated columns in the message
// ("UNIQUE constraint failed: room_allocations.room_id, ...").
func UniqueViolation(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, UniqueCurrentBed),
		strings.Contains(msg, "room_allocations.room_id") && strings.Contains(msg, "room_allocations.bed_number"):
		return UniqueCurrentBed
	case strings.Contains(msg, UniqueCurrentResident),
		strings.Contains(msg, "room_allocations.resident_id"):
		return UniqueCurrentResident
	}
	return ""
}
