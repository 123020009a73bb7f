package allocation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// RoomAvailability is a derived snapshot of one room's occupancy. It is
// recomputed from the ledger on every call and never persisted or cached;
// occupied and free beds come from the same query result so a bed can never
// appear in both lists.
type RoomAvailability struct {
	RoomID       int64  `json:"room_id"`
	Number       string `json:"number"`
	Hostel       string `json:"hostel"`
	Capacity     int    `json:"capacity"`
	Occupied     int    `json:"occupied"`
	OccupiedBeds []int  `json:"occupied_beds"`
	FreeBeds     []int  `json:"free_beds"`
}

// HostelAvailability aggregates the room snapshots of one hostel.
type HostelAvailability struct {
	Hostel   string             `json:"hostel"`
	Capacity int                `json:"capacity"`
	Occupied int                `json:"occupied"`
	Free     int                `json:"free"`
	Rooms    []RoomAvailability `json:"rooms"`
}

type Calculator struct {
	ledger Ledger
	rooms  RoomDirectory
}

func NewCalculator(ledger Ledger, rooms RoomDirectory) *Calculator {
	return &Calculator{
		ledger: ledger,
		rooms:  rooms,
	}
}

// Compute returns the live snapshot for one room.
func (c *Calculator) Compute(ctx context.Context, roomID int64) (*RoomAvailability, error) {
	room, err := c.rooms.GetByID(ctx, roomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	current, err := c.ledger.List(ctx, repository.AllocationFilters{
		RoomID: roomID,
		Status: domain.AllocationCurrent,
	})
	if err != nil {
		return nil, err
	}

	return snapshot(room, current), nil
}

// ComputeForHostel aggregates snapshots over every room of a hostel. One
// ledger query covers the whole hostel so all room snapshots in the result
// reflect the same read.
func (c *Calculator) ComputeForHostel(ctx context.Context, hostel string) (*HostelAvailability, error) {
	if !domain.KnownHostel(hostel) {
		return nil, ErrNotFound
	}

	rooms, _, err := c.rooms.List(ctx, repository.RoomFilters{Hostel: hostel})
	if err != nil {
		return nil, err
	}

	current, err := c.ledger.List(ctx, repository.AllocationFilters{
		Hostel: hostel,
		Status: domain.AllocationCurrent,
	})
	if err != nil {
		return nil, err
	}

	byRoom := make(map[int64][]domain.Allocation, len(rooms))
	for _, a := range current {
		byRoom[a.RoomID] = append(byRoom[a.RoomID], a)
	}

	out := &HostelAvailability{
		Hostel: hostel,
		Rooms:  make([]RoomAvailability, 0, len(rooms)),
	}
	for i := range rooms {
		snap := snapshot(&rooms[i], byRoom[rooms[i].ID])
		out.Capacity += snap.Capacity
		out.Occupied += snap.Occupied
		out.Free += len(snap.FreeBeds)
		out.Rooms = append(out.Rooms, *snap)
	}
	return out, nil
}

func snapshot(room *domain.Room, current []domain.Allocation) *RoomAvailability {
	taken := make(map[int]bool, len(current))
	for _, a := range current {
		taken[a.BedNumber] = true
	}

	snap := &RoomAvailability{
		RoomID:       room.ID,
		Number:       room.Number,
		Hostel:       room.Hostel,
		Capacity:     room.Capacity,
		OccupiedBeds: make([]int, 0, len(current)),
		FreeBeds:     make([]int, 0, room.Capacity),
	}
	for bed := 1; bed <= room.Capacity; bed++ {
		if taken[bed] {
			snap.OccupiedBeds = append(snap.OccupiedBeds, bed)
		} else {
			snap.FreeBeds = append(snap.FreeBeds, bed)
		}
	}
	snap.Occupied = len(snap.OccupiedBeds)
	return snap
}
