package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/sirupsen/logrus"
)

const op = "commit"

// Commit creates the order or reservation described by draft. The returned
// error is always a *domain.CheckoutError; ErrPartialCommit means the remote
// cart was mutated and a blind retry may duplicate items.
func (t *Transition) Commit(ctx context.Context, draft d.Draft, idempotencyKey string) (*d.CommittedResource, error) {
	if draft.IsEmpty() {
		return nil, d.NewError(d.KindCommitRejected, op, "draft is empty", nil)
	}
	switch draft.Kind {
	case d.ResourceOrder:
		return t.commitOrder(ctx, draft.Order, idempotencyKey)
	case d.ResourceReservation:
		return t.commitReservation(ctx, draft.Reservation, idempotencyKey)
	default:
		return nil, d.NewError(d.KindValidation, op, fmt.Sprintf("unknown draft kind %q", draft.Kind), nil)
	}
}

func (t *Transition) commitOrder(ctx context.Context, draft *d.OrderDraft, idempotencyKey string) (*d.CommittedResource, error) {
	items := make([]d.RemoteCartItem, len(draft.Lines))
	for i, l := range draft.Lines {
		items[i] = d.RemoteCartItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	atomic := false
	if replacer, ok := t.cart.(CartReplacer); ok {
		if err := replacer.ReplaceItems(ctx, items); err != nil {
			return nil, classify(err, "replace remote cart")
		}
		atomic = true
	} else {
		if err := t.clearRemote(ctx); err != nil {
			return nil, err
		}
		for i, item := range items {
			if err := t.cart.AddItem(ctx, item); err != nil {
				if i == 0 {
					return nil, classify(err, fmt.Sprintf("add product %d", item.ProductID))
				}
				return nil, d.NewError(d.KindPartialCommit, op,
					fmt.Sprintf("add product %d after %d of %d items", item.ProductID, i, len(items)), err)
			}
		}
	}

	order, err := t.cart.CreateOrder(ctx, idempotencyKey)
	if err != nil {
		if atomic {
			return nil, classify(err, "create order")
		}
		return nil, d.NewError(d.KindPartialCommit, op, "create order from remote cart", err)
	}

	t.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    len(items),
		"atomic":   atomic,
	}).Info("order committed")
	return order.Committed(), nil
}

// clearRemote empties the remote mirror before any item is added. An absent
// cart counts as cleared; transient failures are retried a bounded number of
// times so that items are never added on top of a stale mirror.
func (t *Transition) clearRemote(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= t.opts.ClearAttempts; attempt++ {
		err := t.cart.Clear(ctx)
		if err == nil {
			return nil
		}

		var remote *d.RemoteError
		if errors.As(err, &remote) {
			if remote.NotFound() {
				t.log.Debug("no remote cart to clear")
				return nil
			}
			if remote.Rejected() {
				return d.NewError(d.KindCommitRejected, op, "clear remote cart", err)
			}
		}

		lastErr = err
		t.log.WithError(err).WithField("attempt", attempt).Warn("clear remote cart failed")
		if attempt < t.opts.ClearAttempts {
			select {
			case <-ctx.Done():
				return d.NewError(d.KindNetwork, op, "clear remote cart", ctx.Err())
			case <-time.After(t.opts.ClearBackoff * time.Duration(attempt)):
			}
		}
	}
	return d.NewError(d.KindNetwork, op, "clear remote cart", lastErr)
}

func (t *Transition) commitReservation(ctx context.Context, draft *d.ReservationDraft, idempotencyKey string) (*d.CommittedResource, error) {
	if draft.PartySize <= 0 {
		return nil, d.NewError(d.KindValidation, op, "party size must be greater than 0", nil)
	}
	if draft.TableID <= 0 {
		return nil, d.NewError(d.KindValidation, op, "table is required", nil)
	}
	start, err := WindowStart(draft.Date, draft.TimeOfDay, t.opts.Location)
	if err != nil {
		return nil, d.NewError(d.KindValidation, op, "reservation time", err)
	}

	res, err := t.reservations.CreateReservation(ctx, d.ReservationRequest{
		TableID:         draft.TableID,
		WindowStart:     start.Format(time.RFC3339),
		PartySize:       draft.PartySize,
		SpecialRequests: draft.SpecialRequests,
	}, idempotencyKey)
	if err != nil {
		return nil, classify(err, "create reservation")
	}

	t.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"table_id":       res.TableID,
	}).Info("reservation committed")
	return res.Committed(), nil
}

// classify maps a failure that happened before any remote mutation.
func classify(err error, what string) error {
	var remote *d.RemoteError
	if errors.As(err, &remote) && remote.Rejected() {
		return d.NewError(d.KindCommitRejected, op, what, err)
	}
	return d.NewError(d.KindNetwork, op, what, err)
}
