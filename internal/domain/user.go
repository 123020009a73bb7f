package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHMC         Role = "hmc"
	RoleStudent     Role = "student"
	RolePlumber     Role = "plumber"
	RoleElectrician Role = "electrician"
	RoleMessVendor  Role = "mess_vendor"

	RoleWardenLohitGirls      Role = "warden_lohit_girls"
	RoleWardenLohitBoys       Role = "warden_lohit_boys"
	RoleWardenPapumBoys       Role = "warden_papum_boys"
	RoleWardenSubhanshiriBoys Role = "warden_subhanshiri_boys"
)

const wardenPrefix = "warden_"

// IsWarden reports whether the role is a hostel warden role.
func (r Role) IsWarden() bool {
	return strings.HasPrefix(string(r), wardenPrefix)
}

// WardenHostel returns the hostel encoded in a warden role string
// ("warden_lohit_boys" -> "lohit_boys"), or "" for non-warden roles.
func (r Role) WardenHostel() string {
	if !r.IsWarden() {
		return ""
	}
	return strings.TrimPrefix(string(r), wardenPrefix)
}

// IsStaff reports whether the role may manage hostel resources at all.
// Mirrors the staff set used across the management endpoints.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleHMC, RolePlumber, RoleElectrician, RoleMessVendor:
		return true
	}
	return r.IsWarden()
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Hostel       string    `json:"hostel,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of an operation, as extracted from the
// access token by the identity middleware.
type Actor struct {
	ID     int64  `json:"id"`
	Role   Role   `json:"role"`
	Hostel string `json:"hostel,omitempty"`
}
