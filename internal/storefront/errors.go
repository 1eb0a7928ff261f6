package storefront

import "errors"

const op = "storefront"

var (
	ErrNotCancellable = errors.New("only pending bookings that have not started can be cancelled")
	ErrNotEditable    = errors.New("only pending reservations that have not started can be changed")
)
