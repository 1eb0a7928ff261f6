package storefront

import (
	"context"
	"errors"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/cache"
	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/fjod/go_restaurant/internal/repository"
)

const loadTimeout = 5 * time.Second

// Workspace returns the user's workspace, restoring the saved cart on first use.
func (s *Service) Workspace(ctx context.Context, userID string) (*Workspace, error) {
	s.mu.Lock()
	ws, ok := s.workspaces[userID]
	s.mu.Unlock()
	if ok {
		return ws, nil
	}

	// concurrent first requests of one user share a single load, which must
	// outlive the caller that happened to start it
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		saved, err := s.loadCart(loadCtx, userID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if ws, ok := s.workspaces[userID]; ok {
			return ws, nil
		}
		store := cart.NewStore(s.pricing)
		store.Restore(saved.Lines)
		ws := &Workspace{Cart: store, Checkout: s.newMachine(userID, store)}
		s.workspaces[userID] = ws
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

func (s *Service) loadCart(ctx context.Context, userID string) (*d.SavedCart, error) {
	saved, err := s.cache.Get(ctx, userID)
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("cache get error")
	}

	saved, err = s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &d.SavedCart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, userID, saved); err != nil {
			s.log.WithError(err).Warn("cache set error")
		}
	}()
	return saved, nil
}

// saveCart persists the current lines and drops the cached copy. Failures are
// logged only: the in-memory draft stays authoritative for this process.
func (s *Service) saveCart(ctx context.Context, userID string, store *cart.Store) {
	saved := &d.SavedCart{UserID: userID, Lines: store.Lines()}
	if err := s.carts.UpsertCart(ctx, saved); err != nil {
		s.log.WithField("user_id", userID).WithError(err).Warn("failed to save cart")
	}
	s.invalidateCache(userID)
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.WithError(err).Warn("cache invalidate error")
	}
}
