package checkout

import (
	"context"
	"errors"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Confirm commits the current draft. When the session already holds a
// commitment for an identical draft it is reused and no call is made; when the
// draft changed, the old pending resource is cancelled before committing anew.
//
// The session is returned on failure too, so callers can show LastError.
func (m *Machine) Confirm(ctx context.Context) (*d.CheckoutSession, error) {
	m.mu.Lock()
	s, err := m.currentLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.Step != d.StepReviewing {
		m.mu.Unlock()
		return nil, illegal(s.Step, "confirm")
	}

	draft := m.draftLocked()
	if draft.IsEmpty() {
		err := d.NewError(d.KindCommitRejected, op, "draft is empty", ErrEmptyDraft)
		m.failLocked(d.StepReviewing, err)
		out := s.Clone()
		m.mu.Unlock()
		return out, err
	}

	fingerprint := Fingerprint(draft)
	if err := m.moveLocked(d.StepCommitting); err != nil {
		m.mu.Unlock()
		return nil, err
	}

	if s.HasCommitment() && s.DraftFingerprint == fingerprint {
		m.logger().WithField("resource_id", *s.CommittedResourceID).Info("reusing committed resource")
		s.LastError = nil
		err := m.moveLocked(d.StepPaying)
		m.persistLocked(ctx)
		out := s.Clone()
		m.mu.Unlock()
		return out, err
	}

	var previous *d.CommittedResource
	if s.Resource != nil {
		r := *s.Resource
		previous = &r
	}
	attempt := s.Attempt
	key := s.IdempotencyKey
	m.inFlight = true
	m.persistLocked(ctx)
	m.mu.Unlock()

	if previous != nil {
		if err := m.releasePrevious(ctx, previous); err != nil {
			return m.finishCommit(ctx, attempt, commitResult{err: err})
		}
		// a fresh key, or the server would hand back the cancelled resource
		key = uuid.NewString()
	}

	res, err := m.committer.Commit(ctx, draft, key)
	return m.finishCommit(ctx, attempt, commitResult{
		resource:    res,
		err:         err,
		fingerprint: fingerprint,
		replaced:    previous != nil,
		key:         key,
	})
}

type commitResult struct {
	resource    *d.CommittedResource
	err         error
	fingerprint uint64
	replaced    bool
	key         string
}

func (m *Machine) finishCommit(ctx context.Context, attempt uint64, r commitResult) (*d.CheckoutSession, error) {
	m.mu.Lock()
	if !m.isCurrentLocked(attempt) {
		m.mu.Unlock()
		m.discardLate(ctx, attempt, r.resource)
		return nil, d.ErrStaleAttempt
	}
	defer m.mu.Unlock()
	m.inFlight = false
	s := m.session

	if r.replaced {
		s.CommittedResourceID = nil
		s.Resource = nil
		s.IdempotencyKey = r.key
	}

	if r.err != nil {
		switch d.KindOf(r.err) {
		case d.KindValidation, d.KindCommitRejected:
			m.failLocked(d.StepReviewing, r.err)
		default:
			m.failLocked(d.StepFailed, r.err)
		}
		m.persistLocked(ctx)
		return s.Clone(), r.err
	}

	id := r.resource.ID
	s.CommittedResourceID = &id
	s.Resource = r.resource
	s.DraftFingerprint = r.fingerprint
	s.LastError = nil
	err := m.moveLocked(d.StepPaying)
	m.persistLocked(ctx)
	return s.Clone(), err
}

// discardLate drops the result of an attempt the user walked away from. A
// resource created by it was never shown, so it is cancelled.
func (m *Machine) discardLate(ctx context.Context, attempt uint64, r *d.CommittedResource) {
	log := m.log.WithField("attempt", attempt)
	if r == nil {
		log.Info("discarded result of abandoned checkout attempt")
		return
	}
	log.WithField("resource_id", r.ID).Warn("discarded commitment of abandoned checkout attempt")
	m.cancelOrphan(ctx, r)
}

// releasePrevious cancels the commitment of an outdated draft. A rejected
// cancel is settled by the server-recorded status: a resource that is gone or
// no longer pending counts as released.
func (m *Machine) releasePrevious(ctx context.Context, previous *d.CommittedResource) error {
	log := m.log.WithFields(logrus.Fields{
		"resource_kind": previous.Kind,
		"resource_id":   previous.ID,
	})
	err := m.resources.Cancel(ctx, previous.Kind, previous.ID)
	if err == nil {
		log.Info("cancelled commitment for a changed draft")
		return nil
	}
	var remote *d.RemoteError
	if !errors.As(err, &remote) || !remote.Rejected() {
		return classifyCancel(err)
	}
	if remote.NotFound() {
		log.Info("commitment for a changed draft is already gone")
		return nil
	}

	status, statusErr := m.resources.Status(ctx, previous.Kind, previous.ID)
	switch {
	case statusErr != nil && errors.As(statusErr, &remote) && remote.NotFound():
		log.Info("commitment for a changed draft is already gone")
		return nil
	case statusErr != nil:
		log.WithError(statusErr).Warn("failed to read status of rejected cancel")
		return classifyCancel(err)
	case status != d.ResourceStatusPending:
		log.WithField("status", status).Info("commitment for a changed draft is no longer pending")
		return nil
	}
	return classifyCancel(err)
}

func classifyCancel(err error) error {
	var remote *d.RemoteError
	if errors.As(err, &remote) && remote.Rejected() {
		return d.NewError(d.KindCommitRejected, op, "cancel previous commitment", err)
	}
	return d.NewError(d.KindNetwork, op, "cancel previous commitment", err)
}
