package domain

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type CardDetails struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVC         string `json:"cvc"`
	HolderName  string `json:"holder_name"`
}

type BillingAddress struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type PaymentDetails struct {
	Card    CardDetails    `json:"card"`
	Billing BillingAddress `json:"billing_address"`
}

// ChargeRequest is what the payments collaborator receives. Exactly one of
// OrderIDs and ReservationID is set.
type ChargeRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	OrderIDs       []int64         `json:"order_ids,omitempty"`
	ReservationID  *int64          `json:"reservation_id,omitempty"`
	Card           CardDetails     `json:"card_details"`
	Billing        BillingAddress  `json:"billing_address"`
	IdempotencyKey string          `json:"-"`
}

type ChargeResponse struct {
	Status PaymentStatus `json:"status"`
	ID     string        `json:"id"`
	Reason string        `json:"reason,omitempty"`
}

type PaymentOutcome struct {
	Status    PaymentStatus `json:"status"`
	PaymentID string        `json:"payment_id,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}
