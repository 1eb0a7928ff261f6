package domain

// OrderDraft is the cart content handed to the commit step. It is a copy:
// the live cart may keep mutating while the commit is in flight.
type OrderDraft struct {
	Lines []CartLine `json:"lines"`
}

// ReservationDraft is the user's table selection. TimeOfDay is accepted in
// the form the user typed it ("7:30 PM", "19:30") and normalised on commit.
type ReservationDraft struct {
	TableID         int64  `json:"table_id"`
	Date            string `json:"date"`
	TimeOfDay       string `json:"time_of_day"`
	PartySize       int    `json:"party_size"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// Draft is either an order draft or a reservation draft.
type Draft struct {
	Kind        ResourceKind      `json:"kind"`
	Order       *OrderDraft       `json:"order,omitempty"`
	Reservation *ReservationDraft `json:"reservation,omitempty"`
}

func NewOrderDraft(lines []CartLine) Draft {
	cp := make([]CartLine, len(lines))
	copy(cp, lines)
	return Draft{Kind: ResourceOrder, Order: &OrderDraft{Lines: cp}}
}

func NewReservationDraft(r ReservationDraft) Draft {
	return Draft{Kind: ResourceReservation, Reservation: &r}
}

func (d Draft) IsEmpty() bool {
	switch d.Kind {
	case ResourceOrder:
		return d.Order == nil || len(d.Order.Lines) == 0
	case ResourceReservation:
		return d.Reservation == nil
	}
	return true
}

// RemoteCartItem is what the server-side cart mirror receives per line. The
// server is the source of truth for price at commit time, so no price is sent.
type RemoteCartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ReservationRequest is the wire form of a reservation draft. WindowStart is
// ISO-8601 with a 24-hour time of day.
type ReservationRequest struct {
	TableID         int64  `json:"table_id"`
	WindowStart     string `json:"window_start"`
	PartySize       int    `json:"party_size"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// ReservationUpdate carries the fields a user may change on a pending reservation.
type ReservationUpdate struct {
	WindowStart     *string `json:"window_start,omitempty"`
	PartySize       *int    `json:"party_size,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}
