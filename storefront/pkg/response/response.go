package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutState names the station a checkout attempt is at. Collecting
// and validated are resubmittable; payment-failed is terminal for the
// attempt even though the order survives server-side.
type CheckoutState string

const (
	StateCollecting        CheckoutState = "collecting"
	StateValidated         CheckoutState = "validated"
	StateOrderSubmitting   CheckoutState = "order-submitting"
	StateOrderFailed       CheckoutState = "order-failed"
	StatePaymentInitiating CheckoutState = "payment-initiating"
	StatePaymentFailed     CheckoutState = "payment-failed"
	StateRedirected        CheckoutState = "redirected"
	StateResolved          CheckoutState = "resolved"
)

type CheckoutResult struct {
	State      CheckoutState `json:"state"`
	OrderID    uuid.UUID     `json:"orderId,omitempty"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// PaymentReturn renders the post-redirect confirmation. Status is one
// of paid, processing, failed; it is never paid unless the resolved
// payment status is paid.
type PaymentReturn struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
}

const (
	ReturnPaid       = "paid"
	ReturnProcessing = "processing"
	ReturnFailed     = "failed"
)
