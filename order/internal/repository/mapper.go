package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/adiwardana/commerce/order/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (o Order) StatusResponse(paymentStatus string) response.OrderStatus {
	return response.OrderStatus{
		OrderNumber:   o.OrderNumber,
		Total:         DecimalFromNumeric(o.Total),
		PaymentStatus: paymentStatus,
	}
}
