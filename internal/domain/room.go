package domain

import "time"

type RoomType string

const (
	RoomSingle    RoomType = "single"
	RoomDouble    RoomType = "double"
	RoomTriple    RoomType = "triple"
	RoomDormitory RoomType = "dormitory"
)

// ValidRoomType reports whether t is one of the known room types.
func ValidRoomType(t RoomType) bool {
	switch t {
	case RoomSingle, RoomDouble, RoomTriple, RoomDormitory:
		return true
	}
	return false
}

const (
	HostelLohitGirls      = "lohit_girls"
	HostelLohitBoys       = "lohit_boys"
	HostelPapumBoys       = "papum_boys"
	HostelSubhanshiriBoys = "subhanshiri_boys"
)

// Hostels lists the known hostel identifiers.
func Hostels() []string {
	return []string{HostelLohitGirls, HostelLohitBoys, HostelPapumBoys, HostelSubhanshiriBoys}
}

// KnownHostel reports whether id names an existing hostel.
func KnownHostel(id string) bool {
	for _, h := range Hostels() {
		if h == id {
			return true
		}
	}
	return false
}

type Room struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number" validate:"required"`
	Building  string    `json:"building" validate:"required"`
	Floor     int       `json:"floor"`
	Hostel    string    `json:"hostel" validate:"required"`
	Type      RoomType  `json:"type" validate:"required"`
	Capacity  int       `json:"capacity" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
