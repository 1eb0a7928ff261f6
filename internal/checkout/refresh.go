package checkout

import (
	"context"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Refresh asks the server for the status of a resource whose payment is
// awaiting confirmation. The server-recorded status always wins.
func (m *Machine) Refresh(ctx context.Context) (*d.CheckoutSession, error) {
	m.mu.Lock()
	s, err := m.currentLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.Step != d.StepAwaitingConfirmation {
		m.mu.Unlock()
		return nil, illegal(s.Step, "refresh payment status")
	}
	kind, id := s.Resource.Kind, s.Resource.ID
	attempt := s.Attempt
	m.inFlight = true
	m.mu.Unlock()

	status, err := m.resources.Status(ctx, kind, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isCurrentLocked(attempt) {
		m.log.WithFields(logrus.Fields{"attempt": attempt, "resource_id": id}).Info("discarded status of abandoned checkout attempt")
		return nil, d.ErrStaleAttempt
	}
	m.inFlight = false
	s = m.session

	if err != nil {
		m.logger().WithError(err).Warn("failed to refresh resource status")
		return s.Clone(), d.NewError(d.KindNetwork, op, "refresh resource status", err)
	}

	s.Resource.Status = status
	switch status {
	case d.ResourceStatusConfirmed:
		err = m.succeedLocked(ctx)
	case d.ResourceStatusCancelled, d.ResourceStatusFailed:
		// nothing left to pay for; a retry has to commit again
		s.CommittedResourceID = nil
		s.Resource = nil
		s.IdempotencyKey = uuid.NewString()
		err = d.NewError(d.KindPaymentFailed, op, "payment was not confirmed", nil)
		m.failLocked(d.StepFailed, err)
		m.persistLocked(ctx)
	default:
		m.logger().WithField("status", status).Debug("payment still awaiting confirmation")
	}
	return s.Clone(), err
}
