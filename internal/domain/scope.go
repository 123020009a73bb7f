package domain

type ScopeKind int

const (
	// ScopeAllHostels grants read and write access to every hostel.
	ScopeAllHostels ScopeKind = iota
	// ScopeSingleHostel grants read and write access within one hostel.
	ScopeSingleHostel
	// ScopeOwnAllocations grants read access to the actor's own allocation
	// records only, and no write access.
	ScopeOwnAllocations
)

// Scope is the resolved reach of an actor over hostels and rooms.
type Scope struct {
	Kind   ScopeKind
	Hostel string // set only for ScopeSingleHostel
}

// ResolveScope maps an actor's role to the hostels it may act on. Pure
// function of the actor; every read and write path consumes this instead of
// re-deriving role rules per endpoint.
func ResolveScope(a Actor) Scope {
	switch {
	case a.Role == RoleAdmin || a.Role == RoleHMC:
		return Scope{Kind: ScopeAllHostels}
	case a.Role.IsWarden():
		hostel := a.Role.WardenHostel()
		if hostel == "" {
			hostel = a.Hostel
		}
		return Scope{Kind: ScopeSingleHostel, Hostel: hostel}
	default:
		return Scope{Kind: ScopeOwnAllocations}
	}
}

// CanManage reports whether the scope permits mutating allocations in the
// given hostel.
func (s Scope) CanManage(hostel string) bool {
	switch s.Kind {
	case ScopeAllHostels:
		return true
	case ScopeSingleHostel:
		return s.Hostel == hostel
	default:
		return false
	}
}

// CanViewAllocation reports whether the scope permits reading the given
// allocation record.
func (s Scope) CanViewAllocation(actor Actor, residentID int64, hostel string) bool {
	switch s.Kind {
	case ScopeAllHostels:
		return true
	case ScopeSingleHostel:
		return s.Hostel == hostel
	default:
		return residentID == actor.ID
	}
}
