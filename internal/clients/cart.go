package clients

import (
	"context"

	d "github.com/fjod/go_restaurant/domain"
)

// RemoteCart is the server-side cart mirror of the signed-in user.
type RemoteCart struct {
	c *Client
}

func NewRemoteCart(c *Client) *RemoteCart {
	return &RemoteCart{c: c}
}

func (r *RemoteCart) Clear(ctx context.Context) error {
	return r.c.do(ctx, "DELETE", "/cart", nil, nil, "")
}

func (r *RemoteCart) AddItem(ctx context.Context, item d.RemoteCartItem) error {
	return r.c.do(ctx, "POST", "/cart/items", item, nil, "")
}

// CreateOrder turns the remote cart into a pending order.
func (r *RemoteCart) CreateOrder(ctx context.Context, idempotencyKey string) (*d.Order, error) {
	var o d.Order
	if err := r.c.do(ctx, "POST", "/orders", struct{}{}, &o, idempotencyKey); err != nil {
		return nil, err
	}
	return &o, nil
}

// ReplacingRemoteCart is a RemoteCart on a backend that can replace the
// whole cart in one request.
type ReplacingRemoteCart struct {
	*RemoteCart
}

func NewReplacingRemoteCart(c *Client) *ReplacingRemoteCart {
	return &ReplacingRemoteCart{RemoteCart: NewRemoteCart(c)}
}

func (r *ReplacingRemoteCart) ReplaceItems(ctx context.Context, items []d.RemoteCartItem) error {
	body := struct {
		Items []d.RemoteCartItem `json:"items"`
	}{Items: items}
	return r.c.do(ctx, "PUT", "/cart", body, nil, "")
}
