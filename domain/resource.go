package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ResourceKind string

const (
	ResourceOrder       ResourceKind = "ORDER"
	ResourceReservation ResourceKind = "RESERVATION"
)

// ResourceStatus is the server-recorded status of an order or reservation.
// It is always the tie-breaker over anything cached locally.
type ResourceStatus string

const (
	ResourceStatusPending   ResourceStatus = "PENDING"
	ResourceStatusConfirmed ResourceStatus = "CONFIRMED"
	ResourceStatusCancelled ResourceStatus = "CANCELLED"
	ResourceStatusFailed    ResourceStatus = "FAILED"
)

// OrderLine is the server's copy of a cart line at commit time.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID        int64           `json:"id"`
	Status    ResourceStatus  `json:"status"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

type Reservation struct {
	ID              int64           `json:"id"`
	Status          ResourceStatus  `json:"status"`
	TableID         int64           `json:"table_id"`
	WindowStart     time.Time       `json:"window_start"`
	PartySize       int             `json:"party_size"`
	SpecialRequests string          `json:"special_requests,omitempty"`
	Deposit         decimal.Decimal `json:"deposit"`
	Currency        string          `json:"currency"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CanCancel reports whether the user may still cancel: only pending
// reservations whose window has not started.
func (r Reservation) CanCancel(now time.Time) bool {
	return r.Status == ResourceStatusPending && now.Before(r.WindowStart)
}

// CommittedResource is the uniform view of an Order or a Reservation the
// checkout works with once the server has assigned an id.
type CommittedResource struct {
	Kind        ResourceKind    `json:"kind"`
	ID          int64           `json:"id"`
	Status      ResourceStatus  `json:"status"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	Order       *Order          `json:"order,omitempty"`
	Reservation *Reservation    `json:"reservation,omitempty"`
}

func (o *Order) Committed() *CommittedResource {
	return &CommittedResource{
		Kind:      ResourceOrder,
		ID:        o.ID,
		Status:    o.Status,
		AmountDue: o.Total,
		Currency:  o.Currency,
		CreatedAt: o.CreatedAt,
		Order:     o,
	}
}

func (r *Reservation) Committed() *CommittedResource {
	return &CommittedResource{
		Kind:        ResourceReservation,
		ID:          r.ID,
		Status:      r.Status,
		AmountDue:   r.Deposit,
		Currency:    r.Currency,
		CreatedAt:   r.CreatedAt,
		Reservation: r,
	}
}

// Slot is a table as listed by the reservations collaborator. Read-only here.
type Slot struct {
	ID          int64  `json:"id"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location"`
	IsAvailable bool   `json:"is_available"`
}
