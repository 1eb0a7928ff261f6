package commit

import (
	"context"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/sirupsen/logrus"
)

// RemoteCart is the server-side cart mirror an order is created from.
type RemoteCart interface {
	Clear(ctx context.Context) error
	AddItem(ctx context.Context, item d.RemoteCartItem) error
	CreateOrder(ctx context.Context, idempotencyKey string) (*d.Order, error)
}

// CartReplacer is implemented by remote carts that can swap their whole
// content in one call. When available it replaces the clear + add sequence.
type CartReplacer interface {
	ReplaceItems(ctx context.Context, items []d.RemoteCartItem) error
}

type ReservationCreator interface {
	CreateReservation(ctx context.Context, req d.ReservationRequest, idempotencyKey string) (*d.Reservation, error)
}

type Options struct {
	ClearAttempts int
	ClearBackoff  time.Duration
	Location      *time.Location
}

func DefaultOptions() Options {
	return Options{
		ClearAttempts: 3,
		ClearBackoff:  200 * time.Millisecond,
		Location:      time.Local,
	}
}

// Transition turns a client draft into a server-side committed resource.
// It never clears the local cart: that happens only once payment succeeds.
type Transition struct {
	cart         RemoteCart
	reservations ReservationCreator
	opts         Options
	log          logrus.FieldLogger
}

func NewTransition(cart RemoteCart, reservations ReservationCreator, opts Options, log logrus.FieldLogger) *Transition {
	if opts.ClearAttempts < 1 {
		opts.ClearAttempts = 1
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Transition{
		cart:         cart,
		reservations: reservations,
		opts:         opts,
		log:          log,
	}
}
