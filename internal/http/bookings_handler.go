package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/sirupsen/logrus"
)

type BookingService interface {
	ListMyOrders(ctx context.Context) ([]d.Order, error)
	CancelOrder(ctx context.Context, id int64) error
	CancelReservation(ctx context.Context, id int64) error
	UpdateReservation(ctx context.Context, id int64, upd d.ReservationUpdate) (*d.Reservation, error)
	AvailableTables(ctx context.Context, partySize int, date, timeOfDay string) ([]d.Slot, error)
}

// BookingsHandler serves the user's orders, reservations and the table listing.
type BookingsHandler struct {
	service BookingService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewBookingsHandler(service BookingService, timeout time.Duration, log logrus.FieldLogger) *BookingsHandler {
	return &BookingsHandler{service: service, timeout: timeout, log: log}
}

// GET /api/v1/orders
func (h *BookingsHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.service.ListMyOrders(ctx)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if orders == nil {
		orders = []d.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// POST /api/v1/orders/{id}/cancel
func (h *BookingsHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := positiveIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.CancelOrder(ctx, id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/reservations/{id}/cancel
func (h *BookingsHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := positiveIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.CancelReservation(ctx, id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/v1/reservations/{id}
func (h *BookingsHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := positiveIDParam(w, r, "id")
	if !ok {
		return
	}
	var req d.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	res, err := h.service.UpdateReservation(ctx, id, req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /api/v1/tables/available?party_size=4&date=2026-11-02&time=7:30 PM
func (h *BookingsHandler) AvailableTables(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	partySize, err := strconv.Atoi(q.Get("party_size"))
	if err != nil || partySize <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_party_size", "party_size must be a positive integer")
		return
	}
	if q.Get("date") == "" || q.Get("time") == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "date and time are required")
		return
	}

	slots, err := h.service.AvailableTables(ctx, partySize, q.Get("date"), q.Get("time"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}
