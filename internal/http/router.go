package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_restaurant/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Cart           *CartHandler
	Checkout       *CheckoutHandler
	Bookings       *BookingsHandler
	Verifier       *auth.Verifier
	SignInURL      string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", cfg.Cart.Menu)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Verifier, cfg.SignInURL, log))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.Cart.GetCart)
				r.Delete("/", cfg.Cart.ClearCart)
				r.Post("/items", cfg.Cart.AddItem)
				r.Put("/items/{product_id}", cfg.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", cfg.Checkout.Begin)
				r.Get("/", cfg.Checkout.Get)
				r.Post("/confirm", cfg.Checkout.Confirm)
				r.Post("/pay", cfg.Checkout.Pay)
				r.Post("/back", cfg.Checkout.Back)
				r.Post("/retry", cfg.Checkout.Retry)
				r.Post("/abandon", cfg.Checkout.Abandon)
				r.Post("/refresh", cfg.Checkout.Refresh)
			})

			r.Get("/orders", cfg.Bookings.ListOrders)
			r.Post("/orders/{id}/cancel", cfg.Bookings.CancelOrder)
			r.Post("/reservations/{id}/cancel", cfg.Bookings.CancelReservation)
			r.Patch("/reservations/{id}", cfg.Bookings.UpdateReservation)
			r.Get("/tables/available", cfg.Bookings.AvailableTables)
		})
	})
	return r
}
