package clients

import (
	"context"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
)

type Reservations struct {
	c *Client
}

func NewReservations(c *Client) *Reservations {
	return &Reservations{c: c}
}

func (r *Reservations) ListTables(ctx context.Context) ([]d.Slot, error) {
	var out []d.Slot
	if err := r.c.do(ctx, "GET", "/tables", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reservations) CreateReservation(ctx context.Context, req d.ReservationRequest, idempotencyKey string) (*d.Reservation, error) {
	var out d.Reservation
	if err := r.c.do(ctx, "POST", "/reservations", req, &out, idempotencyKey); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Reservations) Get(ctx context.Context, id int64) (*d.Reservation, error) {
	var out d.Reservation
	if err := r.c.do(ctx, "GET", fmt.Sprintf("/reservations/%d", id), nil, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Reservations) Cancel(ctx context.Context, id int64) error {
	return r.c.do(ctx, "POST", fmt.Sprintf("/reservations/%d/cancel", id), struct{}{}, nil, "")
}

func (r *Reservations) Update(ctx context.Context, id int64, upd d.ReservationUpdate) (*d.Reservation, error) {
	var out d.Reservation
	if err := r.c.do(ctx, "PATCH", fmt.Sprintf("/reservations/%d", id), upd, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}
