package checkout

import (
	"context"
	"sync"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/shopspring/decimal"
)

// MockCommitter implements Committer for testing
type MockCommitter struct {
	mu      sync.Mutex
	Drafts  []d.Draft
	Keys    []string
	Err     error
	Release chan struct{} // when set, Commit blocks until it is closed
	nextID  int64
}

func (m *MockCommitter) Commit(_ context.Context, draft d.Draft, key string) (*d.CommittedResource, error) {
	m.mu.Lock()
	m.Drafts = append(m.Drafts, draft)
	m.Keys = append(m.Keys, key)
	release := m.Release
	err := m.Err
	m.nextID++
	id := 100 + m.nextID
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	if draft.Kind == d.ResourceReservation {
		return (&d.Reservation{
			ID:       id,
			Status:   d.ResourceStatusPending,
			TableID:  draft.Reservation.TableID,
			Deposit:  decimal.RequireFromString("10.00"),
			Currency: "USD",
		}).Committed(), nil
	}
	return (&d.Order{
		ID:       id,
		Status:   d.ResourceStatusPending,
		Total:    decimal.RequireFromString("43.20"),
		Currency: "USD",
	}).Committed(), nil
}

func (m *MockCommitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Drafts)
}

// MockPayer implements Payer for testing
type MockPayer struct {
	mu        sync.Mutex
	Outcome   d.PaymentOutcome
	Err       error
	Resources []d.CommittedResource
}

func (m *MockPayer) Pay(_ context.Context, resource *d.CommittedResource, _ d.PaymentDetails, _ string) (d.PaymentOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resources = append(m.Resources, *resource)
	return m.Outcome, m.Err
}

// MockResources implements ResourceTracker for testing
type MockResources struct {
	mu        sync.Mutex
	Current   d.ResourceStatus
	StatusErr error
	CancelErr error
	Cancelled []int64
}

func (m *MockResources) Status(_ context.Context, _ d.ResourceKind, _ int64) (d.ResourceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Current, m.StatusErr
}

func (m *MockResources) Cancel(_ context.Context, _ d.ResourceKind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelErr != nil {
		return m.CancelErr
	}
	m.Cancelled = append(m.Cancelled, id)
	return nil
}

func (m *MockResources) CancelledIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.Cancelled...)
}

// MockRecorder implements SessionRecorder for testing
type MockRecorder struct {
	mu        sync.Mutex
	Saved     []*d.CheckoutSession
	Completed []*d.CheckoutSession
	Payloads  [][]byte
	Deleted   []string

	CompleteErr error
}

func (m *MockRecorder) SaveSession(_ context.Context, s *d.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, s)
	return nil
}

func (m *MockRecorder) CompleteSession(_ context.Context, s *d.CheckoutSession, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	m.Completed = append(m.Completed, s)
	m.Payloads = append(m.Payloads, payload)
	return nil
}

func (m *MockRecorder) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	return nil
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}
