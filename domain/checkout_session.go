package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CheckoutSession is the state machine's record of one checkout. The committed
// resource id survives back-navigation and payment failure so that payment can
// be retried without committing again.
type CheckoutSession struct {
	ID                  string             `json:"id"`
	UserID              string             `json:"user_id"`
	Kind                ResourceKind       `json:"kind"`
	Step                CheckoutStep       `json:"step"`
	CommittedResourceID *int64             `json:"committed_resource_id,omitempty"`
	Resource            *CommittedResource `json:"resource,omitempty"`
	DraftFingerprint    uint64             `json:"-"`
	Attempt             uint64             `json:"attempt"`
	IdempotencyKey      string             `json:"-"`
	PaymentID           string             `json:"payment_id,omitempty"`
	LastError           *SessionError      `json:"last_error,omitempty"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// SessionError is the reason attached to a failed (or bounced) step.
type SessionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (s *CheckoutSession) HasCommitment() bool {
	return s.CommittedResourceID != nil
}

// Clone returns a copy safe to hand out of the state machine.
func (s *CheckoutSession) Clone() *CheckoutSession {
	cp := *s
	if s.CommittedResourceID != nil {
		id := *s.CommittedResourceID
		cp.CommittedResourceID = &id
	}
	if s.Resource != nil {
		r := *s.Resource
		cp.Resource = &r
	}
	if s.LastError != nil {
		e := *s.LastError
		cp.LastError = &e
	}
	return &cp
}

// CompletionEvent is the payload of the checkout.succeeded outbox event.
func (s *CheckoutSession) CompletionEvent(completedAt time.Time) ([]byte, error) {
	payload := map[string]interface{}{
		"checkout_id":  s.ID,
		"user_id":      s.UserID,
		"kind":         s.Kind,
		"payment_id":   s.PaymentID,
		"completed_at": completedAt,
	}
	if s.Resource != nil {
		payload["resource_id"] = s.Resource.ID
		payload["amount"] = s.Resource.AmountDue
		payload["currency"] = s.Resource.Currency
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout payload: %w", err)
	}
	return b, nil
}
