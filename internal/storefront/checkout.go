package storefront

import (
	"context"

	d "github.com/fjod/go_restaurant/domain"
)

// Checkout returns the user's current checkout session, nil when none is open.
func (s *Service) Checkout(ctx context.Context, userID string) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Checkout.Session(), nil
}

func (s *Service) BeginCheckout(ctx context.Context, userID string, kind d.ResourceKind, reservation *d.ReservationDraft) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Checkout.Begin(ctx, kind, reservation)
}

func (s *Service) ConfirmCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Checkout.Confirm(ctx)
}

func (s *Service) PayCheckout(ctx context.Context, userID string, details d.PaymentDetails) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	session, err := ws.Checkout.Pay(ctx, details)
	s.afterCheckout(ctx, userID, session)
	return session, err
}

func (s *Service) RefreshCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	session, err := ws.Checkout.Refresh(ctx)
	s.afterCheckout(ctx, userID, session)
	return session, err
}

func (s *Service) BackCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Checkout.Back(ctx)
}

func (s *Service) RetryCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Checkout.Retry(ctx)
}

func (s *Service) AbandonCheckout(ctx context.Context, userID string) error {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return err
	}
	return ws.Checkout.Abandon(ctx)
}

// afterCheckout drops the persisted cart once a paid order has cleared the draft.
func (s *Service) afterCheckout(ctx context.Context, userID string, session *d.CheckoutSession) {
	if session == nil || session.Step != d.StepSucceeded || session.Kind != d.ResourceOrder {
		return
	}
	s.forgetCart(ctx, userID)
}
