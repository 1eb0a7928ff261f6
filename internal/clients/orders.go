package clients

import (
	"context"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
)

type Orders struct {
	c *Client
}

func NewOrders(c *Client) *Orders {
	return &Orders{c: c}
}

func (o *Orders) ListMine(ctx context.Context) ([]d.Order, error) {
	var out []d.Order
	if err := o.c.do(ctx, "GET", "/orders", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orders) Get(ctx context.Context, id int64) (*d.Order, error) {
	var out d.Order
	if err := o.c.do(ctx, "GET", fmt.Sprintf("/orders/%d", id), nil, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *Orders) Cancel(ctx context.Context, id int64) error {
	return o.c.do(ctx, "POST", fmt.Sprintf("/orders/%d/cancel", id), struct{}{}, nil, "")
}
