package allocation

import "time"

type RequestAllocationRequest struct {
	ResidentID int64      `json:"resident_id" binding:"required"`
	RoomID     int64      `json:"room_id" binding:"required"`
	BedNumber  *int       `json:"bed_number"`
	StartDate  *time.Time `json:"start_date"`
}

type EndAllocationRequest struct {
	EndDate *time.Time `json:"end_date"`
}

type ReassignRequest struct {
	BedNumber int `json:"bed_number" binding:"required"`
}
