package storefront

import (
	"context"
	"errors"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/repository"
)

func (s *Service) Menu(ctx context.Context, category d.Category) ([]d.Product, error) {
	return s.catalog.ListByCategory(ctx, category)
}

func (s *Service) GetCart(ctx context.Context, userID string) (d.CartSnapshot, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return d.CartSnapshot{}, err
	}
	return ws.Cart.Snapshot(), nil
}

// AddItem prices the line from the catalog at the moment it is added.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (d.CartSnapshot, error) {
	if quantity < 1 {
		return d.CartSnapshot{}, d.NewError(d.KindValidation, op, "quantity must be at least 1", nil)
	}
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return d.CartSnapshot{}, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		var re *d.RemoteError
		if errors.As(err, &re) && re.NotFound() {
			return d.CartSnapshot{}, d.NewError(d.KindValidation, op, fmt.Sprintf("unknown product %d", productID), err)
		}
		return d.CartSnapshot{}, d.NewError(d.KindNetwork, op, "failed to load product", err)
	}

	ws.Cart.AddLine(*product, quantity)
	s.saveCart(ctx, userID, ws.Cart)
	return ws.Cart.Snapshot(), nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (d.CartSnapshot, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return d.CartSnapshot{}, err
	}
	ws.Cart.UpdateQuantity(productID, quantity)
	s.saveCart(ctx, userID, ws.Cart)
	return ws.Cart.Snapshot(), nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64) (d.CartSnapshot, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return d.CartSnapshot{}, err
	}
	ws.Cart.RemoveLine(productID)
	s.saveCart(ctx, userID, ws.Cart)
	return ws.Cart.Snapshot(), nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) (d.CartSnapshot, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return d.CartSnapshot{}, err
	}
	ws.Cart.Clear()
	s.forgetCart(ctx, userID)
	return ws.Cart.Snapshot(), nil
}

func (s *Service) forgetCart(ctx context.Context, userID string) {
	if err := s.carts.DeleteCart(ctx, userID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.log.WithField("user_id", userID).WithError(err).Warn("failed to delete cart")
	}
	s.invalidateCache(userID)
}
