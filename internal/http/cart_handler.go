package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (d.CartSnapshot, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (d.CartSnapshot, error)
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (d.CartSnapshot, error)
	RemoveItem(ctx context.Context, userID string, productID int64) (d.CartSnapshot, error)
	ClearCart(ctx context.Context, userID string) (d.CartSnapshot, error)
	Menu(ctx context.Context, category d.Category) ([]d.Product, error)
}

type CartHandler struct {
	service CartService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCartHandler(service CartService, timeout time.Duration, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{service: service, timeout: timeout, log: log}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GET /api/v1/products?category=MAIN
func (h *CartHandler) Menu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.service.Menu(ctx, d.Category(r.URL.Query().Get("category")))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.service.GetCart(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	snap, err := h.service.AddItem(ctx, getUserIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// zero removes the line
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	snap, err := h.service.UpdateQuantity(ctx, getUserIDFromContext(r.Context()), productID, req.Quantity)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	snap, err := h.service.RemoveItem(ctx, getUserIDFromContext(r.Context()), productID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.service.ClearCart(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return positiveIDParam(w, r, "product_id")
}

func positiveIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
