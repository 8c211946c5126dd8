package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
	ID             uuid.UUID
	OrderNumber    string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Street         string
	City           string
	State          string
	PostalCode     string
	CouponCode     pgtype.Text
	DiscountAmount pgtype.Numeric
	Subtotal       pgtype.Numeric
	ShippingCost   pgtype.Numeric
	Total          pgtype.Numeric
	Currency       string
	CreatedAt      pgtype.Timestamptz
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Size      pgtype.Text
	Color     pgtype.Text
	Quantity  int32
	UnitPrice pgtype.Numeric
}

type Payment struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	SessionID pgtype.Text
	Status    string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}
