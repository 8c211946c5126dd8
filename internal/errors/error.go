package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth            = errors.New("missing authorization")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrEntryNotFound        = errors.New("cart entry not found")
	ErrCouponRejected       = errors.New("coupon rejected")
	ErrOrderCreateFailed    = errors.New("order creation failed")
	ErrPaymentSessionFailed = errors.New("payment session creation failed")
	ErrOrderNotFound        = errors.New("order not found")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
