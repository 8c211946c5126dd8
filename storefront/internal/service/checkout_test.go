package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	orderRequest "github.com/adiwardana/commerce/order/pkg/request"
	orderResponse "github.com/adiwardana/commerce/order/pkg/response"
	"github.com/adiwardana/commerce/storefront/pkg/response"
)

type stubOrders struct {
	createErr error
	created   []orderRequest.CreateOrder
	status    orderResponse.OrderStatus
	statusErr error
}

func (s *stubOrders) CreateOrder(
	_ context.Context,
	order orderRequest.CreateOrder,
) (orderResponse.CreateOrder, error) {
	if s.createErr != nil {
		return orderResponse.CreateOrder{}, s.createErr
	}
	s.created = append(s.created, order)
	return orderResponse.CreateOrder{OrderID: order.ID}, nil
}

func (s *stubOrders) OrderStatus(
	_ context.Context,
	_ uuid.UUID,
) (orderResponse.OrderStatus, error) {
	if s.statusErr != nil {
		return orderResponse.OrderStatus{}, s.statusErr
	}
	return s.status, nil
}

type stubPayments struct {
	sessionErr error
	sessions   int
}

func (s *stubPayments) CreateSession(
	_ context.Context,
	_ uuid.UUID,
	_ string,
) (string, error) {
	s.sessions++
	if s.sessionErr != nil {
		return "", s.sessionErr
	}
	return "https://pay.example.com/session/abc", nil
}

func validCustomer() orderRequest.Customer {
	return orderRequest.Customer{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Phone:      "+1-555-0100",
		Street:     "12 Analytical St",
		City:       "London",
		State:      "LDN",
		PostalCode: "EC1A",
	}
}

func newCheckoutFixture(
	orders *stubOrders,
	payments *stubPayments,
) (*CheckoutService, *CartService) {
	pricingService, cartService := newPricingFixture(&stubCoupons{})
	svc := NewCheckoutService(
		cartService,
		pricingService,
		orders,
		payments,
		"http://localhost:8080/checkout/return",
		"USD",
	)
	return svc, cartService
}

func TestSubmitValidationFailureStaysCollecting(t *testing.T) {
	orders := &stubOrders{}
	svc, cartService := newCheckoutFixture(orders, &stubPayments{})
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 1))
	require.NoError(t, err)

	customer := validCustomer()
	customer.Email = "not-an-email"
	result, err := svc.Submit(ctx, "session-1", customer)
	require.NoError(t, err)
	assert.Equal(t, response.StateCollecting, result.State)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, orders.created)
}

func TestSubmitEmptyCart(t *testing.T) {
	svc, _ := newCheckoutFixture(&stubOrders{}, &stubPayments{})

	_, err := svc.Submit(context.Background(), "session-1", validCustomer())
	assert.ErrorIs(t, err, commonErrors.ErrCartEmpty)
}

func TestSubmitRedirectsAndKeepsCart(t *testing.T) {
	orders := &stubOrders{}
	svc, cartService := newCheckoutFixture(orders, &stubPayments{})
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 2))
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "session-1", validCustomer())
	require.NoError(t, err)
	assert.Equal(t, response.StateRedirected, result.State)
	assert.NotEmpty(t, result.PaymentURL)
	require.Len(t, orders.created, 1)
	assert.True(t, orders.created[0].Subtotal.Equal(decimal.NewFromFloat(49.80)))

	// no payment outcome yet, so the cart must survive the redirect
	cart, err := cartService.Snapshot(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty())
}

func TestSubmitPaymentSessionFailureKeepsOrderAndCart(t *testing.T) {
	orders := &stubOrders{}
	payments := &stubPayments{sessionErr: commonErrors.ErrPaymentSessionFailed}
	svc, cartService := newCheckoutFixture(orders, payments)
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 1))
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "session-1", validCustomer())
	require.NoError(t, err)
	assert.Equal(t, response.StatePaymentFailed, result.State)
	require.Len(t, orders.created, 1)
	assert.Equal(t, orders.created[0].ID, result.OrderID)

	cart, err := cartService.Snapshot(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty())
}

func TestSubmitReusesOrderIDAfterOrderFailure(t *testing.T) {
	orders := &stubOrders{createErr: commonErrors.ErrOrderCreateFailed}
	svc, cartService := newCheckoutFixture(orders, &stubPayments{})
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 1))
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "session-1", validCustomer())
	require.NoError(t, err)
	assert.Equal(t, response.StateOrderFailed, result.State)
	firstID := svc.attemptOrderID("session-1")

	// the retried submission carries the same order id so the order
	// service can deduplicate it
	orders.createErr = nil
	result, err = svc.Submit(ctx, "session-1", validCustomer())
	require.NoError(t, err)
	assert.Equal(t, response.StateRedirected, result.State)
	require.Len(t, orders.created, 1)
	assert.Equal(t, firstID, orders.created[0].ID)
}

func TestResolveClearsCartBeforeStatusLookup(t *testing.T) {
	orderID := uuid.New()
	orders := &stubOrders{statusErr: errors.New("order service unreachable")}
	svc, cartService := newCheckoutFixture(orders, &stubPayments{})
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 1))
	require.NoError(t, err)

	// an unreachable order service still clears the cart and renders as
	// processing, never as paid
	result, err := svc.Resolve(ctx, "session-1", orderID.String())
	require.NoError(t, err)
	assert.Equal(t, response.ReturnProcessing, result.Status)
	assert.Equal(t, orderID, result.OrderID)

	cart, err := cartService.Snapshot(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestResolveMapsPaymentStatus(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		want          string
	}{
		{"paid maps to paid", orderResponse.PaymentPaid, response.ReturnPaid},
		{"failed maps to failed", orderResponse.PaymentFailed, response.ReturnFailed},
		{"pending maps to processing", orderResponse.PaymentPending, response.ReturnProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID := uuid.New()
			orders := &stubOrders{status: orderResponse.OrderStatus{
				OrderNumber:   "ORD-20260901-DEADBEEF",
				Total:         decimal.NewFromFloat(56.75),
				PaymentStatus: tt.paymentStatus,
			}}
			svc, _ := newCheckoutFixture(orders, &stubPayments{})

			result, err := svc.Resolve(context.Background(), "session-1", orderID.String())
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, "ORD-20260901-DEADBEEF", result.OrderNumber)
		})
	}
}

func TestResolveFallsBackToStoredOrderID(t *testing.T) {
	orders := &stubOrders{status: orderResponse.OrderStatus{
		PaymentStatus: orderResponse.PaymentPaid,
	}}
	svc, cartService := newCheckoutFixture(orders, &stubPayments{})
	ctx := context.Background()

	storedID := uuid.New()
	require.NoError(t, cartService.SaveLastOrderID(ctx, "session-1", storedID))

	result, err := svc.Resolve(ctx, "session-1", "")
	require.NoError(t, err)
	assert.Equal(t, storedID, result.OrderID)
	assert.Equal(t, response.ReturnPaid, result.Status)
}

func TestResolveWithoutAnyOrderID(t *testing.T) {
	svc, _ := newCheckoutFixture(&stubOrders{}, &stubPayments{})

	_, err := svc.Resolve(context.Background(), "session-1", "")
	assert.ErrorIs(t, err, commonErrors.ErrOrderNotFound)
}
