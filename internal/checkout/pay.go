package checkout

import (
	"context"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pay charges the committed resource. It is allowed while paying and, when a
// commitment exists, after a failure. The commitment must have been made from
// the current draft. A pending outcome moves the checkout to
// AWAITING_CONFIRMATION, never to SUCCEEDED.
//
// The session is returned on failure too, so callers can show LastError.
func (m *Machine) Pay(ctx context.Context, details d.PaymentDetails) (*d.CheckoutSession, error) {
	m.mu.Lock()
	s, err := m.currentLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	switch {
	case s.Step == d.StepPaying, s.Step == d.StepFailed && s.HasCommitment():
		if s.DraftFingerprint != Fingerprint(m.draftLocked()) {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", d.IllegalTransitionError, ErrDraftChanged)
		}
		if s.Step == d.StepPaying {
			break
		}
		if err := m.moveLocked(d.StepPaying); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	default:
		m.mu.Unlock()
		return nil, illegal(s.Step, "pay")
	}

	resource := *s.Resource
	attempt := s.Attempt
	m.inFlight = true
	m.mu.Unlock()

	outcome, err := m.payer.Pay(ctx, &resource, details, uuid.NewString())
	return m.finishPay(ctx, attempt, resource, outcome, err)
}

func (m *Machine) finishPay(ctx context.Context, attempt uint64, resource d.CommittedResource, outcome d.PaymentOutcome, err error) (*d.CheckoutSession, error) {
	m.mu.Lock()
	if !m.isCurrentLocked(attempt) {
		m.mu.Unlock()
		log := m.log.WithFields(logrus.Fields{"attempt": attempt, "resource_id": resource.ID})
		if outcome.Status == d.PaymentStatusCompleted {
			log.WithField("payment_id", outcome.PaymentID).Error("payment completed for abandoned checkout attempt")
		} else {
			log.Info("discarded payment result of abandoned checkout attempt")
		}
		return nil, d.ErrStaleAttempt
	}
	defer m.mu.Unlock()
	m.inFlight = false
	s := m.session

	if err != nil {
		if d.KindOf(err) == d.KindValidation {
			m.failLocked(d.StepPaying, err)
		} else {
			m.failLocked(d.StepFailed, err)
		}
		m.persistLocked(ctx)
		return s.Clone(), err
	}

	s.PaymentID = outcome.PaymentID
	switch outcome.Status {
	case d.PaymentStatusCompleted:
		err = m.succeedLocked(ctx)
	case d.PaymentStatusPending:
		s.LastError = nil
		err = m.moveLocked(d.StepAwaitingConfirmation)
		m.persistLocked(ctx)
	default:
		err = d.NewError(d.KindPaymentFailed, op, fmt.Sprintf("unexpected payment status %q", outcome.Status), nil)
		m.failLocked(d.StepFailed, err)
		m.persistLocked(ctx)
	}
	return s.Clone(), err
}

// succeedLocked is the single point where local and server state meet: the
// local cart is cleared only here, once the order is paid.
func (m *Machine) succeedLocked(ctx context.Context) error {
	s := m.session
	if err := m.moveLocked(d.StepSucceeded); err != nil {
		return err
	}
	s.LastError = nil
	if s.Resource != nil {
		s.Resource.Status = d.ResourceStatusConfirmed
	}
	if s.Kind == d.ResourceOrder {
		m.cart.Clear()
	}

	payload, err := s.CompletionEvent(m.now())
	if err != nil {
		m.logger().WithError(err).Error("failed to build checkout completion payload")
		m.persistLocked(ctx)
		return nil
	}
	if err := m.recorder.CompleteSession(ctx, s.Clone(), payload); err != nil {
		// the outbox poller re-emits the event for a succeeded session saved without one
		m.logger().WithError(err).Warn("failed to record checkout completion")
		m.persistLocked(ctx)
	}
	return nil
}
