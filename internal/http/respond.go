package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/auth"
	"github.com/fjod/go_restaurant/internal/checkout"
	"github.com/fjod/go_restaurant/internal/storefront"
	"github.com/fjod/go_restaurant/pkg/circuitbreaker"
	"github.com/fjod/go_restaurant/pkg/logger"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// classifyError maps a service error to an HTTP status and an error body. The
// user-facing text tells apart "nothing was created" from "created, not paid".
func classifyError(err error) (int, ErrorResponse) {
	var re *d.RemoteError
	switch {
	case errors.Is(err, checkout.ErrNoCheckout):
		return http.StatusNotFound, ErrorResponse{Error: "no checkout in progress", Code: "no_checkout"}
	case errors.Is(err, d.ErrCheckoutInFlight):
		return http.StatusConflict, ErrorResponse{Error: "a checkout step is already running", Code: "in_flight"}
	case errors.Is(err, d.IllegalTransitionError):
		return http.StatusConflict, ErrorResponse{Error: "this action is not available at the current checkout step", Code: "illegal_transition", Details: err.Error()}
	case errors.Is(err, d.ErrStaleAttempt):
		return http.StatusConflict, ErrorResponse{Error: "the checkout was abandoned", Code: "stale_attempt"}
	case errors.Is(err, storefront.ErrNotCancellable), errors.Is(err, storefront.ErrNotEditable):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "not_modifiable"}
	case circuitbreaker.IsOpen(err):
		return http.StatusServiceUnavailable, ErrorResponse{Error: d.UserMessage(d.KindNetwork), Code: "service_unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: d.UserMessage(d.KindNetwork), Code: "timeout"}
	}

	switch kind := d.KindOf(err); kind {
	case d.KindValidation:
		return http.StatusBadRequest, ErrorResponse{Error: d.UserMessage(kind), Code: "validation", Details: err.Error()}
	case d.KindCommitRejected:
		return http.StatusConflict, ErrorResponse{Error: d.UserMessage(kind), Code: "commit_rejected"}
	case d.KindPartialCommit:
		return http.StatusBadGateway, ErrorResponse{Error: d.UserMessage(kind), Code: "partial_commit"}
	case d.KindPaymentFailed:
		return http.StatusPaymentRequired, ErrorResponse{Error: d.UserMessage(kind), Code: "payment_failed"}
	case d.KindNetwork:
		return http.StatusServiceUnavailable, ErrorResponse{Error: d.UserMessage(kind), Code: "service_unavailable"}
	}

	if errors.As(err, &re) {
		switch {
		case re.NotFound():
			return http.StatusNotFound, ErrorResponse{Error: re.Message, Code: "not_found"}
		case re.StatusCode == http.StatusUnauthorized:
			return http.StatusUnauthorized, ErrorResponse{Error: "sign-in required", Code: "unauthenticated"}
		case re.StatusCode == http.StatusForbidden:
			return http.StatusForbidden, ErrorResponse{Error: re.Message, Code: "permission_denied"}
		case re.Rejected():
			return http.StatusUnprocessableEntity, ErrorResponse{Error: re.Message, Code: "rejected"}
		default:
			return http.StatusBadGateway, ErrorResponse{Error: d.UserMessage(d.KindNetwork), Code: "upstream_error"}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: d.UserMessage(d.KindUnknown), Code: "internal_error"}
}

func handleError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status, body := classifyError(err)
	entry := logger.WithContext(r.Context(), log).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	respondJSON(w, status, body)
}

func getUserIDFromContext(ctx context.Context) string {
	u, ok := auth.UserFromContext(ctx)
	if !ok {
		return ""
	}
	return u.ID
}
