package storefront

import (
	"context"
	"fmt"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/availability"
	"github.com/fjod/go_restaurant/internal/commit"
)

// AvailableTables lists the tables that can seat the party at the given date
// and time of day.
func (s *Service) AvailableTables(ctx context.Context, partySize int, date, timeOfDay string) ([]d.Slot, error) {
	start, err := commit.WindowStart(date, timeOfDay, s.loc)
	if err != nil {
		return nil, d.NewError(d.KindValidation, op, err.Error(), err)
	}
	slots, err := s.reservations.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return availability.AvailableSlots(slots, partySize, start), nil
}

func (s *Service) ListMyOrders(ctx context.Context) ([]d.Order, error) {
	return s.orders.ListMine(ctx)
}

// CancelOrder cancels a pending order. The server status decides.
func (s *Service) CancelOrder(ctx context.Context, id int64) error {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != d.ResourceStatusPending {
		return ErrNotCancellable
	}
	return s.orders.Cancel(ctx, id)
}

func (s *Service) CancelReservation(ctx context.Context, id int64) error {
	res, err := s.reservations.Get(ctx, id)
	if err != nil {
		return err
	}
	if !res.CanCancel(s.now()) {
		return ErrNotCancellable
	}
	return s.reservations.Cancel(ctx, id)
}

// UpdateReservation forwards a partial update of a pending reservation whose
// window has not started. A new window start must be RFC 3339.
func (s *Service) UpdateReservation(ctx context.Context, id int64, upd d.ReservationUpdate) (*d.Reservation, error) {
	if upd.PartySize != nil && *upd.PartySize < 1 {
		return nil, d.NewError(d.KindValidation, op, "party size must be at least 1", nil)
	}
	if upd.WindowStart != nil {
		start, err := time.Parse(time.RFC3339, *upd.WindowStart)
		if err != nil {
			return nil, d.NewError(d.KindValidation, op, fmt.Sprintf("invalid window start %q", *upd.WindowStart), err)
		}
		if !start.After(s.now()) {
			return nil, d.NewError(d.KindValidation, op, "window start must be in the future", nil)
		}
	}

	res, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.CanCancel(s.now()) {
		return nil, ErrNotEditable
	}
	return s.reservations.Update(ctx, id, upd)
}
