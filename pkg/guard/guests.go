package guard

import (
	"sort"

	"guest-dashboard-guard/pkg/model"
)

// GuestSet is the set of user IDs treated as guests for one cycle.
type GuestSet map[string]struct{}

// NewGuestSet builds a set from ids.
func NewGuestSet(ids ...string) GuestSet {
	s := make(GuestSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a guest.
func (s GuestSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the IDs in lexical order.
func (s GuestSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the guests present in users, sorted and without duplicates.
func (s GuestSet) Intersect(users []string) []string {
	hit := GuestSet{}
	for _, u := range users {
		if s.Has(u) {
			hit[u] = struct{}{}
		}
	}
	return hit.Sorted()
}

// ResolveGuests computes the guest set for the configured detection mode.
// In specific_users mode the configured IDs are used verbatim, even when no
// such user exists.
func ResolveGuests(users []model.User, mode model.GuestDetection, configured []string) GuestSet {
	switch mode {
	case model.GuestNonAdmin:
		guests := GuestSet{}
		for _, u := range users {
			if !u.SystemGenerated && !u.IsAdmin {
				guests[u.ID] = struct{}{}
			}
		}
		return guests
	case model.GuestSpecificUsers:
		return NewGuestSet(configured...)
	default:
		return GuestSet{}
	}
}
