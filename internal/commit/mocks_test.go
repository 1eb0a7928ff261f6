package commit

import (
	"context"
	"sync"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/shopspring/decimal"
)

// MockRemoteCart records every call in order and fails on demand.
type MockRemoteCart struct {
	mu         sync.Mutex
	Calls      []string
	Items      []d.RemoteCartItem
	ClearErrs  []error // consumed one per Clear call
	AddErrAt   int     // 1-based index of the AddItem call that fails, 0 = never
	AddErr     error
	CreateErr  error
	Order      *d.Order
	addCount   int
	CreateKeys []string
}

func (m *MockRemoteCart) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "clear")
	if len(m.ClearErrs) > 0 {
		err := m.ClearErrs[0]
		m.ClearErrs = m.ClearErrs[1:]
		if err != nil {
			return err
		}
	}
	m.Items = nil
	return nil
}

func (m *MockRemoteCart) AddItem(_ context.Context, item d.RemoteCartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "add")
	m.addCount++
	if m.AddErrAt == m.addCount {
		return m.AddErr
	}
	m.Items = append(m.Items, item)
	return nil
}

func (m *MockRemoteCart) CreateOrder(_ context.Context, key string) (*d.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "create")
	m.CreateKeys = append(m.CreateKeys, key)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Order != nil {
		return m.Order, nil
	}
	return &d.Order{
		ID:        101,
		Status:    d.ResourceStatusPending,
		Total:     decimal.RequireFromString("43.20"),
		Currency:  "USD",
		CreatedAt: time.Now(),
	}, nil
}

// MockReplacingCart additionally supports atomic replacement.
type MockReplacingCart struct {
	MockRemoteCart
	ReplaceErr error
}

func (m *MockReplacingCart) ReplaceItems(_ context.Context, items []d.RemoteCartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "replace")
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Items = append([]d.RemoteCartItem(nil), items...)
	return nil
}

type MockReservations struct {
	Request *d.ReservationRequest
	Key     string
	Err     error
}

func (m *MockReservations) CreateReservation(_ context.Context, req d.ReservationRequest, key string) (*d.Reservation, error) {
	m.Request = &req
	m.Key = key
	if m.Err != nil {
		return nil, m.Err
	}
	start, _ := time.Parse(time.RFC3339, req.WindowStart)
	return &d.Reservation{
		ID:          55,
		Status:      d.ResourceStatusPending,
		TableID:     req.TableID,
		WindowStart: start,
		PartySize:   req.PartySize,
		Deposit:     decimal.RequireFromString("10.00"),
		Currency:    "USD",
	}, nil
}
