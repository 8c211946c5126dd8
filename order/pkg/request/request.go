package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	FirstName  string `json:"firstName"  validate:"required"`
	LastName   string `json:"lastName"   validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
	Phone      string `json:"phone"      validate:"required"`
	Street     string `json:"street"     validate:"required"`
	City       string `json:"city"       validate:"required"`
	State      string `json:"state"      validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

type OrderItem struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Name      string          `json:"name"      validate:"required"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int32           `json:"quantity"  validate:"required,gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"required"`
}

// CreateOrder carries a client-generated order id so a resubmission of
// the same checkout attempt lands on the same row instead of creating
// a duplicate.
type CreateOrder struct {
	ID             uuid.UUID       `json:"id"             validate:"required"`
	Customer       Customer        `json:"customer"       validate:"required"`
	Items          []OrderItem     `json:"items"          validate:"required,min=1,dive"`
	CouponCode     string          `json:"couponCode"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Subtotal       decimal.Decimal `json:"subtotal"       validate:"required"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	Total          decimal.Decimal `json:"total"          validate:"required"`
	Currency       string          `json:"currency"       validate:"required"`
}

// PaymentWebhook is the gateway callback reporting the outcome of a
// payment session.
type PaymentWebhook struct {
	OrderID   uuid.UUID `json:"orderId"   validate:"required"`
	SessionID string    `json:"sessionId" validate:"required"`
	Status    string    `json:"status"    validate:"required,oneof=paid failed"`
}
