package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() d.PaymentDetails {
	return d.PaymentDetails{
		Card: d.CardDetails{
			Number:      "4242 4242 4242 4242",
			ExpiryMonth: "12",
			ExpiryYear:  "2030",
			CVC:         "123",
			HolderName:  "Ada Lovelace",
		},
		Billing: d.BillingAddress{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
	}
}

func pendingOrder() *d.CommittedResource {
	return (&d.Order{
		ID:       42,
		Status:   d.ResourceStatusPending,
		Total:    decimal.RequireFromString("43.20"),
		Currency: "USD",
	}).Committed()
}

func newTestOrchestrator(gw Gateway) *Orchestrator {
	log, _ := test.NewNullLogger()
	return NewOrchestrator(gw, time.Second, log)
}

func TestPay_Completed(t *testing.T) {
	gw := &MockGateway{Response: &d.ChargeResponse{Status: d.PaymentStatusCompleted, ID: "pay_1"}}
	sut := newTestOrchestrator(gw)

	out, err := sut.Pay(context.Background(), pendingOrder(), validDetails(), "idem-1")

	require.NoError(t, err)
	assert.Equal(t, d.PaymentStatusCompleted, out.Status)
	assert.Equal(t, "pay_1", out.PaymentID)

	require.Len(t, gw.Requests, 1)
	req := gw.Requests[0]
	assert.Equal(t, []int64{42}, req.OrderIDs)
	assert.Nil(t, req.ReservationID)
	assert.Equal(t, "4242424242424242", req.Card.Number)
	assert.True(t, decimal.RequireFromString("43.20").Equal(req.Amount))
	assert.Equal(t, "idem-1", req.IdempotencyKey)
	assert.True(t, gw.Deadline)
}

func TestPay_PendingIsNotSuccess(t *testing.T) {
	gw := &MockGateway{Response: &d.ChargeResponse{Status: d.PaymentStatusPending, ID: "pay_2"}}
	sut := newTestOrchestrator(gw)

	out, err := sut.Pay(context.Background(), pendingOrder(), validDetails(), "idem-1")

	require.NoError(t, err)
	assert.Equal(t, d.PaymentStatusPending, out.Status)
	assert.NotEqual(t, d.PaymentStatusCompleted, out.Status)
}

func TestPay_Reservation(t *testing.T) {
	gw := &MockGateway{Response: &d.ChargeResponse{Status: d.PaymentStatusCompleted, ID: "pay_3"}}
	sut := newTestOrchestrator(gw)
	res := (&d.Reservation{ID: 9, Deposit: decimal.RequireFromString("10"), Currency: "USD"}).Committed()

	_, err := sut.Pay(context.Background(), res, validDetails(), "idem-r")

	require.NoError(t, err)
	require.NotNil(t, gw.Requests[0].ReservationID)
	assert.Equal(t, int64(9), *gw.Requests[0].ReservationID)
	assert.Empty(t, gw.Requests[0].OrderIDs)
}

func TestPay_MissingCardFieldNeverCallsGateway(t *testing.T) {
	gw := &MockGateway{}
	sut := newTestOrchestrator(gw)
	details := validDetails()
	details.Card.CVC = ""

	_, err := sut.Pay(context.Background(), pendingOrder(), details, "idem-1")

	assert.ErrorIs(t, err, d.ErrValidation)
	assert.Empty(t, gw.Requests)
}

func TestPay_DeclinedWithReason(t *testing.T) {
	gw := &MockGateway{Response: &d.ChargeResponse{Status: d.PaymentStatusFailed, ID: "pay_4", Reason: "insufficient funds"}}
	sut := newTestOrchestrator(gw)

	out, err := sut.Pay(context.Background(), pendingOrder(), validDetails(), "idem-1")

	assert.ErrorIs(t, err, d.ErrPaymentFailed)
	assert.Equal(t, d.PaymentStatusFailed, out.Status)
	assert.Equal(t, "insufficient funds", out.Reason)
}

func TestPay_DeclinedWithoutReason(t *testing.T) {
	gw := &MockGateway{Response: &d.ChargeResponse{Status: d.PaymentStatusFailed}}
	sut := newTestOrchestrator(gw)

	out, err := sut.Pay(context.Background(), pendingOrder(), validDetails(), "idem-1")

	assert.ErrorIs(t, err, d.ErrPaymentFailed)
	assert.Equal(t, genericDeclineReason, out.Reason)
}

func TestPay_GatewayRejection(t *testing.T) {
	gw := &MockGateway{Err: &d.RemoteError{StatusCode: 402, Message: "card expired"}}
	sut := newTestOrchestrator(gw)

	out, err := sut.Pay(context.Background(), pendingOrder(), validDetails(), "idem-1")

	assert.ErrorIs(t, err, d.ErrPaymentFailed)
	assert.Equal(t, "card expired", out.Reason)
}

func TestPay_TransportError(t *testing.T) {
	gw := &MockGateway{Err: errors.New("dial tcp: connection refused")}
	sut := newTestOrchestrator(gw)

	out, err := sut.Pay(context.Background(), pendingOrder(), validDetails(), "idem-1")

	assert.ErrorIs(t, err, d.ErrNetwork)
	assert.Equal(t, d.PaymentStatusFailed, out.Status)
	assert.Equal(t, genericErrorReason, out.Reason)
}

func TestPay_ReinvokableWithSameResource(t *testing.T) {
	gw := &MockGateway{Response: &d.ChargeResponse{Status: d.PaymentStatusFailed, Reason: "declined"}}
	sut := newTestOrchestrator(gw)
	res := pendingOrder()

	_, err := sut.Pay(context.Background(), res, validDetails(), "idem-1")
	assert.ErrorIs(t, err, d.ErrPaymentFailed)

	gw.Response = &d.ChargeResponse{Status: d.PaymentStatusCompleted, ID: "pay_5"}
	out, err := sut.Pay(context.Background(), res, validDetails(), "idem-2")

	require.NoError(t, err)
	assert.Equal(t, d.PaymentStatusCompleted, out.Status)
	assert.Equal(t, d.ResourceStatusPending, res.Status)
	assert.Len(t, gw.Requests, 2)
}
