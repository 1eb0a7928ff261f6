package storefront

import (
	"context"
	"sync"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/cache"
	"github.com/fjod/go_restaurant/internal/repository"
)

type MockCatalog struct {
	Products map[int64]d.Product
	Err      error
}

func (m *MockCatalog) GetProduct(_ context.Context, id int64) (*d.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, &d.RemoteError{StatusCode: 404, Message: "product not found"}
	}
	return &p, nil
}

func (m *MockCatalog) ListByCategory(_ context.Context, category d.Category) ([]d.Product, error) {
	var out []d.Product
	for _, p := range m.Products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

type MockOrders struct {
	Orders    map[int64]d.Order
	Cancelled []int64
}

func (m *MockOrders) ListMine(context.Context) ([]d.Order, error) {
	var out []d.Order
	for _, o := range m.Orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *MockOrders) Get(_ context.Context, id int64) (*d.Order, error) {
	o, ok := m.Orders[id]
	if !ok {
		return nil, &d.RemoteError{StatusCode: 404, Message: "order not found"}
	}
	return &o, nil
}

func (m *MockOrders) Cancel(_ context.Context, id int64) error {
	m.Cancelled = append(m.Cancelled, id)
	return nil
}

type MockReservations struct {
	Tables       []d.Slot
	Reservations map[int64]d.Reservation
	Cancelled    []int64
	Updates      []d.ReservationUpdate
}

func (m *MockReservations) ListTables(context.Context) ([]d.Slot, error) {
	return m.Tables, nil
}

func (m *MockReservations) Get(_ context.Context, id int64) (*d.Reservation, error) {
	r, ok := m.Reservations[id]
	if !ok {
		return nil, &d.RemoteError{StatusCode: 404, Message: "reservation not found"}
	}
	return &r, nil
}

func (m *MockReservations) Cancel(_ context.Context, id int64) error {
	m.Cancelled = append(m.Cancelled, id)
	return nil
}

func (m *MockReservations) Update(_ context.Context, id int64, upd d.ReservationUpdate) (*d.Reservation, error) {
	m.Updates = append(m.Updates, upd)
	r := m.Reservations[id]
	if upd.PartySize != nil {
		r.PartySize = *upd.PartySize
	}
	return &r, nil
}

type MockCartRepository struct {
	mu       sync.Mutex
	Carts    map[string]*d.SavedCart
	GetErr   error
	GetCalls int
	Upserts  int
	Deleted  []string
}

func (m *MockCartRepository) GetCart(ctx context.Context, userID string) (*d.SavedCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.Carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return c, nil
}

func (m *MockCartRepository) UpsertCart(_ context.Context, cart *d.SavedCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++
	if m.Carts == nil {
		m.Carts = map[string]*d.SavedCart{}
	}
	m.Carts[cart.UserID] = cart
	return nil
}

func (m *MockCartRepository) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, userID)
	if _, ok := m.Carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.Carts, userID)
	return nil
}

func (m *MockCartRepository) cart(userID string) *d.SavedCart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Carts[userID]
}

type MockCache struct {
	mu      sync.Mutex
	Entries map[string]*d.SavedCart
	Deleted []string
}

func (m *MockCache) Get(_ context.Context, userID string) (*d.SavedCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Entries[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *MockCache) Set(_ context.Context, userID string, cart *d.SavedCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Entries == nil {
		m.Entries = map[string]*d.SavedCart{}
	}
	m.Entries[userID] = cart
	return nil
}

func (m *MockCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, userID)
	delete(m.Entries, userID)
	return nil
}

func (m *MockCache) has(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Entries[userID]
	return ok
}

type stubCommitter struct{}

func (stubCommitter) Commit(_ context.Context, draft d.Draft, _ string) (*d.CommittedResource, error) {
	total := d.DefaultPricing().Summarize(draft.Order.Lines).Total
	return (&d.Order{ID: 501, Status: d.ResourceStatusPending, Total: total, Currency: "USD"}).Committed(), nil
}

type stubPayer struct{}

func (stubPayer) Pay(context.Context, *d.CommittedResource, d.PaymentDetails, string) (d.PaymentOutcome, error) {
	return d.PaymentOutcome{Status: d.PaymentStatusCompleted, PaymentID: "pay_9"}, nil
}

type stubResources struct{}

func (stubResources) Status(context.Context, d.ResourceKind, int64) (d.ResourceStatus, error) {
	return d.ResourceStatusPending, nil
}

func (stubResources) Cancel(context.Context, d.ResourceKind, int64) error { return nil }

type stubRecorder struct{}

func (stubRecorder) SaveSession(context.Context, *d.CheckoutSession) error { return nil }
func (stubRecorder) CompleteSession(context.Context, *d.CheckoutSession, []byte) error {
	return nil
}
func (stubRecorder) DeleteSession(context.Context, string) error { return nil }
