package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	OrderID uuid.UUID `json:"orderId"`
}

// OrderStatus is the payment-resolution view of an order. PaymentStatus
// is one of pending, paid, failed.
type OrderStatus struct {
	OrderNumber   string          `json:"orderNumber"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus string          `json:"paymentStatus"`
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)
