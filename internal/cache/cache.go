package cache

import (
	"context"
	"errors"

	d "github.com/fjod/go_restaurant/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) (*d.SavedCart, error)
	Set(ctx context.Context, userID string, cart *d.SavedCart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
