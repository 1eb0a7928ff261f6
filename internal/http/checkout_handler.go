package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/payment"
	"github.com/sirupsen/logrus"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*d.CheckoutSession, error)
	BeginCheckout(ctx context.Context, userID string, kind d.ResourceKind, reservation *d.ReservationDraft) (*d.CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error)
	PayCheckout(ctx context.Context, userID string, details d.PaymentDetails) (*d.CheckoutSession, error)
	RefreshCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error)
	BackCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error)
	RetryCheckout(ctx context.Context, userID string) (*d.CheckoutSession, error)
	AbandonCheckout(ctx context.Context, userID string) error
}

type CheckoutHandler struct {
	service CheckoutService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{service: service, timeout: timeout, log: log}
}

type BeginCheckoutRequestDTO struct {
	Kind        string              `json:"kind"`
	Reservation *d.ReservationDraft `json:"reservation,omitempty"`
}

// CheckoutResponseDTO carries the session even when the step failed, so the
// client can render LastError and the committed resource.
type CheckoutResponseDTO struct {
	Checkout *d.CheckoutSession `json:"checkout"`
	Card     string             `json:"card,omitempty"`
	Error    *ErrorResponse     `json:"error,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req BeginCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	kind := d.ResourceKind(strings.ToUpper(req.Kind))
	if kind == "" {
		kind = d.ResourceOrder
	}

	session, err := h.service.BeginCheckout(ctx, getUserIDFromContext(r.Context()), kind, req.Reservation)
	h.respond(w, r, http.StatusCreated, session, "", err)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.Checkout(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, CheckoutResponseDTO{Checkout: session})
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.ConfirmCheckout(ctx, getUserIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, session, "", err)
}

// POST /api/v1/checkout/pay
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req d.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := h.service.PayCheckout(ctx, getUserIDFromContext(r.Context()), req)
	h.respond(w, r, http.StatusOK, session, payment.MaskCardNumber(req.Card.Number), err)
}

// POST /api/v1/checkout/refresh
func (h *CheckoutHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.RefreshCheckout(ctx, getUserIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, session, "", err)
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.BackCheckout(ctx, getUserIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, session, "", err)
}

// POST /api/v1/checkout/retry
func (h *CheckoutHandler) Retry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.RetryCheckout(ctx, getUserIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, session, "", err)
}

// POST /api/v1/checkout/abandon
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.service.AbandonCheckout(ctx, getUserIDFromContext(r.Context())); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, status int, session *d.CheckoutSession, card string, err error) {
	if err == nil {
		respondJSON(w, status, CheckoutResponseDTO{Checkout: session, Card: card})
		return
	}
	if session == nil {
		handleError(w, r, h.log, err)
		return
	}
	errStatus, body := classifyError(err)
	if session.LastError != nil {
		body.Details = session.LastError.Message
	}
	respondJSON(w, errStatus, CheckoutResponseDTO{Checkout: session, Card: card, Error: &body})
}
