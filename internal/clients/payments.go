package clients

import (
	"context"
	"strings"

	d "github.com/fjod/go_restaurant/domain"
)

type Payments struct {
	c *Client
}

func NewPayments(c *Client) *Payments {
	return &Payments{c: c}
}

func (p *Payments) Charge(ctx context.Context, req d.ChargeRequest) (*d.ChargeResponse, error) {
	var out d.ChargeResponse
	if err := p.c.do(ctx, "POST", "/payments", req, &out, req.IdempotencyKey); err != nil {
		return nil, err
	}
	// gateways disagree on the case of the status
	out.Status = d.PaymentStatus(strings.ToUpper(strings.TrimSpace(string(out.Status))))
	return &out, nil
}
