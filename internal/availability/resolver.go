package availability

import (
	"time"

	d "github.com/fjod/go_restaurant/domain"
)

// AvailableSlots returns, in input order, the slots that are available and
// seat at least partySize guests. A non-positive party size yields no slots.
// The window start is accepted for callers that filter by time upstream; the
// listing already reflects availability for the requested window.
func AvailableSlots(all []d.Slot, partySize int, _ time.Time) []d.Slot {
	out := []d.Slot{}
	if partySize <= 0 {
		return out
	}
	for _, s := range all {
		if s.IsAvailable && s.Capacity >= partySize {
			out = append(out, s)
		}
	}
	return out
}
