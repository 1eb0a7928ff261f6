package checkout

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/commit"
)

// Fingerprint identifies the content a commitment was made for. Two drafts
// with the same fingerprint would produce the same server resource, so an
// existing commitment can be reused.
func Fingerprint(draft d.Draft) uint64 {
	h := xxhash.New()
	switch draft.Kind {
	case d.ResourceOrder:
		if draft.Order == nil {
			break
		}
		lines := make([]d.CartLine, len(draft.Order.Lines))
		copy(lines, draft.Order.Lines)
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
		_, _ = h.WriteString("order")
		for _, l := range lines {
			_, _ = fmt.Fprintf(h, "|%d:%d", l.ProductID, l.Quantity)
		}
	case d.ResourceReservation:
		if draft.Reservation == nil {
			break
		}
		r := draft.Reservation
		tod, err := commit.NormalizeTimeOfDay(r.TimeOfDay)
		if err != nil {
			tod = r.TimeOfDay
		}
		_, _ = fmt.Fprintf(h, "reservation|%d|%s|%s|%d|%s", r.TableID, r.Date, tod, r.PartySize, r.SpecialRequests)
	}
	return h.Sum64()
}
