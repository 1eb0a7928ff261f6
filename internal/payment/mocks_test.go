package payment

import (
	"context"

	d "github.com/fjod/go_restaurant/domain"
)

// MockGateway implements Gateway for testing
type MockGateway struct {
	Response *d.ChargeResponse
	Err      error
	Requests []d.ChargeRequest
	Deadline bool
}

func (m *MockGateway) Charge(ctx context.Context, req d.ChargeRequest) (*d.ChargeResponse, error) {
	m.Requests = append(m.Requests, req)
	_, m.Deadline = ctx.Deadline()
	return m.Response, m.Err
}
