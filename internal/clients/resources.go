package clients

import (
	"context"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
)

// Resources reads and cancels committed orders and reservations by kind.
type Resources struct {
	orders       *Orders
	reservations *Reservations
}

func NewResources(orders *Orders, reservations *Reservations) *Resources {
	return &Resources{orders: orders, reservations: reservations}
}

func (r *Resources) Status(ctx context.Context, kind d.ResourceKind, id int64) (d.ResourceStatus, error) {
	switch kind {
	case d.ResourceOrder:
		o, err := r.orders.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return o.Status, nil
	case d.ResourceReservation:
		res, err := r.reservations.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return res.Status, nil
	}
	return "", fmt.Errorf("unknown resource kind %q", kind)
}

func (r *Resources) Cancel(ctx context.Context, kind d.ResourceKind, id int64) error {
	switch kind {
	case d.ResourceOrder:
		return r.orders.Cancel(ctx, id)
	case d.ResourceReservation:
		return r.reservations.Cancel(ctx, id)
	}
	return fmt.Errorf("unknown resource kind %q", kind)
}
