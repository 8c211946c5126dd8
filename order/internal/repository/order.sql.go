package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOrder = `
INSERT INTO orders (
    id, order_number, first_name, last_name, email, phone,
    street, city, state, postal_code,
    coupon_code, discount_amount, subtotal, shipping_cost, total, currency
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
)
ON CONFLICT (id) DO NOTHING
RETURNING id, order_number, first_name, last_name, email, phone,
    street, city, state, postal_code,
    coupon_code, discount_amount, subtotal, shipping_cost, total, currency, created_at
`

type InsertOrderParams struct {
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
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.ID,
		arg.OrderNumber,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.Phone,
		arg.Street,
		arg.City,
		arg.State,
		arg.PostalCode,
		arg.CouponCode,
		arg.DiscountAmount,
		arg.Subtotal,
		arg.ShippingCost,
		arg.Total,
		arg.Currency,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.Phone,
		&i.Street,
		&i.City,
		&i.State,
		&i.PostalCode,
		&i.CouponCode,
		&i.DiscountAmount,
		&i.Subtotal,
		&i.ShippingCost,
		&i.Total,
		&i.Currency,
		&i.CreatedAt,
	)
	return i, err
}

const findOrderById = `
SELECT id, order_number, first_name, last_name, email, phone,
    street, city, state, postal_code,
    coupon_code, discount_amount, subtotal, shipping_cost, total, currency, created_at
FROM orders
WHERE id = $1
`

func (q *Queries) FindOrderById(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, findOrderById, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.Phone,
		&i.Street,
		&i.City,
		&i.State,
		&i.PostalCode,
		&i.CouponCode,
		&i.DiscountAmount,
		&i.Subtotal,
		&i.ShippingCost,
		&i.Total,
		&i.Currency,
		&i.CreatedAt,
	)
	return i, err
}

const insertOrderItem = `
INSERT INTO order_items (id, order_id, product_id, name, size, color, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, product_id, name, size, color, quantity, unit_price
`

type InsertOrderItemParams struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Size      pgtype.Text
	Color     pgtype.Text
	Quantity  int32
	UnitPrice pgtype.Numeric
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, insertOrderItem,
		arg.ID,
		arg.OrderID,
		arg.ProductID,
		arg.Name,
		arg.Size,
		arg.Color,
		arg.Quantity,
		arg.UnitPrice,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Name,
		&i.Size,
		&i.Color,
		&i.Quantity,
		&i.UnitPrice,
	)
	return i, err
}

const findOrderItemsByOrderId = `
SELECT id, order_id, product_id, name, size, color, quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY name
`

func (q *Queries) FindOrderItemsByOrderId(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, findOrderItemsByOrderId, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Name,
			&i.Size,
			&i.Color,
			&i.Quantity,
			&i.UnitPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertPayment = `
INSERT INTO payments (id, order_id, session_id, status)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, session_id, status, created_at, updated_at
`

type InsertPaymentParams struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	SessionID pgtype.Text
	Status    string
}

func (q *Queries) InsertPayment(ctx context.Context, arg InsertPaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, insertPayment, arg.ID, arg.OrderID, arg.SessionID, arg.Status)
	var i Payment
	err := row.Scan(&i.ID, &i.OrderID, &i.SessionID, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findPaymentByOrderId = `
SELECT id, order_id, session_id, status, created_at, updated_at
FROM payments
WHERE order_id = $1
`

func (q *Queries) FindPaymentByOrderId(ctx context.Context, orderID uuid.UUID) (Payment, error) {
	row := q.db.QueryRow(ctx, findPaymentByOrderId, orderID)
	var i Payment
	err := row.Scan(&i.ID, &i.OrderID, &i.SessionID, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updatePaymentStatus = `
UPDATE payments
SET status = $2, session_id = $3, updated_at = now()
WHERE order_id = $1
RETURNING id, order_id, session_id, status, created_at, updated_at
`

type UpdatePaymentStatusParams struct {
	OrderID   uuid.UUID
	Status    string
	SessionID pgtype.Text
}

func (q *Queries) UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error) {
	row := q.db.QueryRow(ctx, updatePaymentStatus, arg.OrderID, arg.Status, arg.SessionID)
	var i Payment
	err := row.Scan(&i.ID, &i.OrderID, &i.SessionID, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}
