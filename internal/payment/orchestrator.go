package payment

import (
	"context"
	"errors"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/sirupsen/logrus"
)

const (
	op = "payment"

	genericDeclineReason = "The payment was declined."
	genericErrorReason   = "The payment could not be processed."
)

// Pay charges the amount due on resource. Only a COMPLETED outcome means the
// resource is paid; PENDING is returned as is and must not be read as success.
// A failed outcome comes back together with an ErrPaymentFailed or ErrNetwork
// error whose message is safe to show.
func (o *Orchestrator) Pay(ctx context.Context, resource *d.CommittedResource, details d.PaymentDetails, idempotencyKey string) (d.PaymentOutcome, error) {
	if resource == nil {
		return d.PaymentOutcome{}, d.NewError(d.KindValidation, op, "nothing to pay for", nil)
	}
	if err := Validate(details.Card); err != nil {
		return d.PaymentOutcome{}, err
	}

	req := d.ChargeRequest{
		Amount:         resource.AmountDue,
		Currency:       resource.Currency,
		Card:           details.Card,
		Billing:        details.Billing,
		IdempotencyKey: idempotencyKey,
	}
	req.Card.Number = StripCardNumber(details.Card.Number)
	switch resource.Kind {
	case d.ResourceOrder:
		req.OrderIDs = []int64{resource.ID}
	case d.ResourceReservation:
		id := resource.ID
		req.ReservationID = &id
	default:
		return d.PaymentOutcome{}, d.NewError(d.KindValidation, op, fmt.Sprintf("unknown resource kind %q", resource.Kind), nil)
	}

	chargeCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		chargeCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	log := o.log.WithFields(logrus.Fields{
		"resource_kind": resource.Kind,
		"resource_id":   resource.ID,
	})

	resp, err := o.gateway.Charge(chargeCtx, req)
	if err != nil {
		var remote *d.RemoteError
		if errors.As(err, &remote) && remote.Rejected() {
			reason := remote.Message
			if reason == "" {
				reason = genericDeclineReason
			}
			log.WithField("status_code", remote.StatusCode).Warn("payment rejected")
			return failed(reason), d.NewError(d.KindPaymentFailed, op, reason, err)
		}
		log.WithError(err).Warn("payment attempt errored")
		return failed(genericErrorReason), d.NewError(d.KindNetwork, op, genericErrorReason, err)
	}

	switch resp.Status {
	case d.PaymentStatusCompleted:
		log.WithField("payment_id", resp.ID).Info("payment completed")
		return d.PaymentOutcome{Status: d.PaymentStatusCompleted, PaymentID: resp.ID}, nil
	case d.PaymentStatusPending:
		log.WithField("payment_id", resp.ID).Info("payment pending confirmation")
		return d.PaymentOutcome{Status: d.PaymentStatusPending, PaymentID: resp.ID}, nil
	case d.PaymentStatusFailed:
		reason := resp.Reason
		if reason == "" {
			reason = genericDeclineReason
		}
		log.WithField("reason", reason).Warn("payment declined")
		out := failed(reason)
		out.PaymentID = resp.ID
		return out, d.NewError(d.KindPaymentFailed, op, reason, nil)
	default:
		log.WithField("status", resp.Status).Error("unexpected payment status")
		return failed(genericErrorReason), d.NewError(d.KindPaymentFailed, op,
			genericErrorReason, fmt.Errorf("unexpected payment status %q", resp.Status))
	}
}

func failed(reason string) d.PaymentOutcome {
	return d.PaymentOutcome{Status: d.PaymentStatusFailed, Reason: reason}
}
