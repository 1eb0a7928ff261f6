package publisher

import (
	"context"
	"sync"

	d "github.com/fjod/go_restaurant/domain"
	r "github.com/fjod/go_restaurant/internal/repository"
)

type MockRepository struct {
	mu            sync.Mutex
	OutboxEvents  []*r.OutboxEvent
	FetchErr      error
	MarkErr       error
	ProcessedIDs  []int64
	StuckSessions []*d.CheckoutSession
	StuckErr      error
	CompleteErr   error
	Completed     []string
	Payloads      [][]byte
}

// GetUnprocessedEvents hands out the queued events once.
func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	ev := m.OutboxEvents
	m.OutboxEvents = nil
	return ev, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

func (m *MockRepository) GetStuckSessions(context.Context) ([]*d.CheckoutSession, error) {
	if m.StuckErr != nil {
		return nil, m.StuckErr
	}
	return m.StuckSessions, nil
}

func (m *MockRepository) CompleteSession(_ context.Context, s *d.CheckoutSession, payload []byte) error {
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	m.Completed = append(m.Completed, s.ID)
	m.Payloads = append(m.Payloads, payload)
	return nil
}

func (m *MockRepository) processed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.ProcessedIDs...)
}

type MockSink struct {
	mu        sync.Mutex
	Published []*r.OutboxEvent
	FailIDs   map[int64]bool
}

func (m *MockSink) Publish(_ context.Context, event *r.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[event.ID] {
		return errBroker
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockSink) Close() error { return nil }
