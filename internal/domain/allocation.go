package domain

import "time"

type AllocationStatus string

const (
	AllocationCurrent   AllocationStatus = "current"
	AllocationPast      AllocationStatus = "past"
	AllocationCancelled AllocationStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s AllocationStatus) Terminal() bool {
	return s == AllocationPast || s == AllocationCancelled
}

// Allocation binds one resident to one bed in one room for a bounded or
// open-ended period. A record is created as "current" and later moves to
// "past" (normal end) or "cancelled" (voided); both are terminal. Ending a
// tenancy never resurrects a record, a new one is created instead.
type Allocation struct {
	ID         int64            `json:"id"`
	ResidentID int64            `json:"resident_id" validate:"required"`
	RoomID     int64            `json:"room_id" validate:"required"`
	BedNumber  int              `json:"bed_number" validate:"required,gt=0"`
	Status     AllocationStatus `json:"status"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
