package http

import (
	"context"

	d "github.com/fjod/go_restaurant/domain"
)

// MockStorefront implements CartService, CheckoutService and BookingService.
type MockStorefront struct {
	Snapshot d.CartSnapshot
	Products []d.Product
	Session  *d.CheckoutSession
	Orders   []d.Order
	Slots    []d.Slot
	Err      error

	UserID    string
	ProductID int64
	Quantity  int
	Kind      d.ResourceKind
	Draft     *d.ReservationDraft
	Payment   d.PaymentDetails
	PartySize int
	Date      string
	TimeOfDay string
	Update    d.ReservationUpdate
	Cancelled []int64
	Abandoned bool
	Calls     []string
}

func (m *MockStorefront) record(call, userID string) {
	m.Calls = append(m.Calls, call)
	if userID != "" {
		m.UserID = userID
	}
}

func (m *MockStorefront) GetCart(_ context.Context, userID string) (d.CartSnapshot, error) {
	m.record("get_cart", userID)
	return m.Snapshot, m.Err
}

func (m *MockStorefront) AddItem(_ context.Context, userID string, productID int64, quantity int) (d.CartSnapshot, error) {
	m.record("add_item", userID)
	m.ProductID, m.Quantity = productID, quantity
	return m.Snapshot, m.Err
}

func (m *MockStorefront) UpdateQuantity(_ context.Context, userID string, productID int64, quantity int) (d.CartSnapshot, error) {
	m.record("update_quantity", userID)
	m.ProductID, m.Quantity = productID, quantity
	return m.Snapshot, m.Err
}

func (m *MockStorefront) RemoveItem(_ context.Context, userID string, productID int64) (d.CartSnapshot, error) {
	m.record("remove_item", userID)
	m.ProductID = productID
	return m.Snapshot, m.Err
}

func (m *MockStorefront) ClearCart(_ context.Context, userID string) (d.CartSnapshot, error) {
	m.record("clear_cart", userID)
	return m.Snapshot, m.Err
}

func (m *MockStorefront) Menu(_ context.Context, _ d.Category) ([]d.Product, error) {
	m.record("menu", "")
	return m.Products, m.Err
}

func (m *MockStorefront) Checkout(_ context.Context, userID string) (*d.CheckoutSession, error) {
	m.record("checkout", userID)
	return m.Session, m.Err
}

func (m *MockStorefront) BeginCheckout(_ context.Context, userID string, kind d.ResourceKind, draft *d.ReservationDraft) (*d.CheckoutSession, error) {
	m.record("begin", userID)
	m.Kind, m.Draft = kind, draft
	return m.Session, m.Err
}

func (m *MockStorefront) ConfirmCheckout(_ context.Context, userID string) (*d.CheckoutSession, error) {
	m.record("confirm", userID)
	return m.Session, m.Err
}

func (m *MockStorefront) PayCheckout(_ context.Context, userID string, details d.PaymentDetails) (*d.CheckoutSession, error) {
	m.record("pay", userID)
	m.Payment = details
	return m.Session, m.Err
}

func (m *MockStorefront) RefreshCheckout(_ context.Context, userID string) (*d.CheckoutSession, error) {
	m.record("refresh", userID)
	return m.Session, m.Err
}

func (m *MockStorefront) BackCheckout(_ context.Context, userID string) (*d.CheckoutSession, error) {
	m.record("back", userID)
	return m.Session, m.Err
}

func (m *MockStorefront) RetryCheckout(_ context.Context, userID string) (*d.CheckoutSession, error) {
	m.record("retry", userID)
	return m.Session, m.Err
}

func (m *MockStorefront) AbandonCheckout(_ context.Context, userID string) error {
	m.record("abandon", userID)
	m.Abandoned = true
	return m.Err
}

func (m *MockStorefront) ListMyOrders(context.Context) ([]d.Order, error) {
	m.record("list_orders", "")
	return m.Orders, m.Err
}

func (m *MockStorefront) CancelOrder(_ context.Context, id int64) error {
	m.record("cancel_order", "")
	m.Cancelled = append(m.Cancelled, id)
	return m.Err
}

func (m *MockStorefront) CancelReservation(_ context.Context, id int64) error {
	m.record("cancel_reservation", "")
	m.Cancelled = append(m.Cancelled, id)
	return m.Err
}

func (m *MockStorefront) UpdateReservation(_ context.Context, id int64, upd d.ReservationUpdate) (*d.Reservation, error) {
	m.record("update_reservation", "")
	m.Update = upd
	if m.Err != nil {
		return nil, m.Err
	}
	return &d.Reservation{ID: id, Status: d.ResourceStatusPending}, nil
}

func (m *MockStorefront) AvailableTables(_ context.Context, partySize int, date, timeOfDay string) ([]d.Slot, error) {
	m.record("tables", "")
	m.PartySize, m.Date, m.TimeOfDay = partySize, date, timeOfDay
	return m.Slots, m.Err
}
