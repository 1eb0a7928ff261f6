package checkout

import (
	"context"
	"errors"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session returns a copy of the current checkout session, or nil.
func (m *Machine) Session() *d.CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.session.Clone()
}

// Begin opens a checkout of the given kind. Calling it again for the kind
// already in review returns the same session (and, for reservations, replaces
// the draft). A checkout of another kind is abandoned first when allowed.
func (m *Machine) Begin(ctx context.Context, kind d.ResourceKind, reservation *d.ReservationDraft) (*d.CheckoutSession, error) {
	if kind != d.ResourceOrder && kind != d.ResourceReservation {
		return nil, d.NewError(d.KindValidation, op, fmt.Sprintf("unknown checkout kind %q", kind), nil)
	}
	if kind == d.ResourceReservation && reservation == nil {
		return nil, d.NewError(d.KindValidation, op, "reservation details are required", nil)
	}

	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return nil, d.ErrCheckoutInFlight
	}

	var orphan *d.CommittedResource
	if s := m.session; s != nil && !s.Step.IsTerminal() {
		if s.Kind == kind {
			if reservation != nil {
				if s.Step != d.StepReviewing {
					m.mu.Unlock()
					return nil, illegal(s.Step, "change the reservation")
				}
				r := *reservation
				m.reservation = &r
			}
			out := s.Clone()
			m.mu.Unlock()
			return out, nil
		}
		if !s.Step.CanAbandon() {
			m.mu.Unlock()
			return nil, illegal(s.Step, "start another checkout")
		}
		orphan = m.resetLocked(ctx)
	}

	m.attempts++
	m.session = &d.CheckoutSession{
		ID:             uuid.NewString(),
		UserID:         m.userID,
		Kind:           kind,
		Step:           d.StepReviewing,
		Attempt:        m.attempts,
		IdempotencyKey: uuid.NewString(),
		UpdatedAt:      m.now(),
	}
	m.reservation = nil
	if reservation != nil {
		r := *reservation
		m.reservation = &r
	}
	m.logger().Info("checkout started")
	m.persistLocked(ctx)
	out := m.session.Clone()
	m.mu.Unlock()

	m.cancelOrphan(ctx, orphan)
	return out, nil
}

// Abandon resets the checkout. It is allowed while reviewing, after a failure,
// or while a commit or payment call is still outstanding; in the last case the
// late result is discarded when it arrives.
func (m *Machine) Abandon(ctx context.Context) error {
	m.mu.Lock()
	s := m.session
	if s == nil {
		m.mu.Unlock()
		return nil
	}
	if !s.Step.CanAbandon() && !m.inFlight {
		m.mu.Unlock()
		return illegal(s.Step, "abandon")
	}
	var orphan *d.CommittedResource
	if m.inFlight {
		m.resetLocked(ctx)
	} else {
		orphan = m.resetLocked(ctx)
	}
	m.mu.Unlock()

	m.cancelOrphan(ctx, orphan)
	return nil
}

// Back returns from payment to review. The committed resource is kept so
// that confirming the same draft again reuses it.
func (m *Machine) Back(ctx context.Context) (*d.CheckoutSession, error) {
	return m.toReviewing(ctx, d.StepPaying)
}

// Retry returns a failed checkout to review.
func (m *Machine) Retry(ctx context.Context) (*d.CheckoutSession, error) {
	return m.toReviewing(ctx, d.StepFailed)
}

func (m *Machine) toReviewing(ctx context.Context, from d.CheckoutStep) (*d.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.currentLocked()
	if err != nil {
		return nil, err
	}
	if s.Step != from {
		return nil, illegal(s.Step, "return to review")
	}
	if err := m.moveLocked(d.StepReviewing); err != nil {
		return nil, err
	}
	s.LastError = nil
	m.persistLocked(ctx)
	return s.Clone(), nil
}

// currentLocked returns the live session, refusing while a call is outstanding.
func (m *Machine) currentLocked() (*d.CheckoutSession, error) {
	if m.session == nil {
		return nil, ErrNoCheckout
	}
	if m.inFlight {
		return nil, d.ErrCheckoutInFlight
	}
	return m.session, nil
}

// isCurrentLocked reports whether a result for attempt may still be applied.
func (m *Machine) isCurrentLocked(attempt uint64) bool {
	return m.session != nil && m.session.Attempt == attempt
}

func (m *Machine) moveLocked(to d.CheckoutStep) error {
	s := m.session
	from := s.Step
	if !d.CanTransitionTo(from, to) {
		return fmt.Errorf("%w: %s to %s", d.IllegalTransitionError, from, to)
	}
	s.Step = to
	s.UpdatedAt = m.now()
	m.logger().WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Info("checkout step changed")
	return nil
}

func (m *Machine) failLocked(to d.CheckoutStep, err error) {
	kind := d.KindOf(err)
	m.session.LastError = &d.SessionError{Kind: kind, Message: messageFor(kind, err)}
	if m.session.Step != to {
		if moveErr := m.moveLocked(to); moveErr != nil {
			m.logger().WithError(moveErr).Error("cannot record checkout failure")
		}
	}
	m.logger().WithError(err).WithField("kind", kind).Warn("checkout step failed")
}

// resetLocked drops the session and returns its commitment, if any, so the
// caller can cancel it once the lock is released.
func (m *Machine) resetLocked(ctx context.Context) *d.CommittedResource {
	s := m.session
	m.logger().Info("checkout abandoned")
	if err := m.recorder.DeleteSession(ctx, s.ID); err != nil {
		m.logger().WithError(err).Warn("failed to delete checkout session")
	}
	m.session = nil
	m.reservation = nil
	m.inFlight = false
	m.attempts++
	if s.Resource != nil && s.Step != d.StepSucceeded {
		r := *s.Resource
		return &r
	}
	return nil
}

// cancelOrphan cancels a pending resource nobody will pay for any more.
// Failures are only logged: the server expires unpaid resources itself.
func (m *Machine) cancelOrphan(ctx context.Context, r *d.CommittedResource) {
	if r == nil {
		return
	}
	log := m.log.WithFields(logrus.Fields{"resource_kind": r.Kind, "resource_id": r.ID})
	if err := m.resources.Cancel(ctx, r.Kind, r.ID); err != nil {
		log.WithError(err).Warn("failed to cancel abandoned resource")
		return
	}
	log.Info("cancelled abandoned resource")
}

func (m *Machine) persistLocked(ctx context.Context) {
	if err := m.recorder.SaveSession(ctx, m.session.Clone()); err != nil {
		m.logger().WithError(err).Warn("failed to save checkout session")
	}
}

func (m *Machine) logger() logrus.FieldLogger {
	if m.session == nil {
		return m.log
	}
	return m.log.WithFields(logrus.Fields{
		"checkout_id": m.session.ID,
		"attempt":     m.session.Attempt,
	})
}

func (m *Machine) draftLocked() d.Draft {
	if m.session.Kind == d.ResourceReservation {
		if m.reservation == nil {
			return d.Draft{Kind: d.ResourceReservation}
		}
		return d.NewReservationDraft(*m.reservation)
	}
	return d.NewOrderDraft(m.cart.Lines())
}

func illegal(step d.CheckoutStep, action string) error {
	return fmt.Errorf("%w: cannot %s while %s", d.IllegalTransitionError, action, step)
}

// messageFor builds the user-visible text, keeping a gateway reason in front.
func messageFor(kind d.ErrorKind, err error) string {
	msg := d.UserMessage(kind)
	var ce *d.CheckoutError
	if kind == d.KindPaymentFailed && errors.As(err, &ce) && ce.Message != "" {
		return ce.Message + ". " + msg
	}
	return msg
}
