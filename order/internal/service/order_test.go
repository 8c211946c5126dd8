package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/order/pkg/request"
	"github.com/adiwardana/commerce/order/pkg/response"
)

func createOrderRequest(orderID uuid.UUID) request.CreateOrder {
	return request.CreateOrder{
		ID: orderID,
		Customer: request.Customer{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Email:      "ada@example.com",
			Phone:      "+1-555-0100",
			Street:     "12 Analytical St",
			City:       "London",
			State:      "LDN",
			PostalCode: "EC1A",
		},
		Items: []request.OrderItem{
			{
				ProductID: uuid.New(),
				Name:      "Crew Tee",
				Size:      "m",
				Color:     "navy",
				Quantity:  2,
				UnitPrice: decimal.NewFromFloat(24.90),
			},
			{
				ProductID: uuid.New(),
				Name:      "Weekend Set",
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(80),
			},
		},
		CouponCode:     "SAVE10",
		DiscountAmount: decimal.NewFromInt(10),
		Subtotal:       decimal.NewFromFloat(129.80),
		ShippingCost:   decimal.NewFromFloat(6.95),
		Total:          decimal.NewFromFloat(126.75),
		Currency:       "USD",
	}
}

func TestCreateOrderPersistsOrderWithPendingPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := context.Background()
	pool, pgContainer, queries, orderService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	orderID := uuid.New()
	created, err := orderService.CreateOrder(c, createOrderRequest(orderID))
	require.NoError(t, err)
	assert.Equal(t, orderID, created.OrderID)

	items, err := queries.FindOrderItemsByOrderId(c, orderID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	status, err := orderService.FindOrderStatus(c, orderID)
	require.NoError(t, err)
	assert.Equal(t, response.PaymentPending, status.PaymentStatus)
	assert.True(t, status.Total.Equal(decimal.NewFromFloat(126.75)))
	assert.True(t, strings.HasPrefix(status.OrderNumber, "ORD-"))
}

func TestCreateOrderSameIdTwiceReturnsExistingOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := context.Background()
	pool, pgContainer, queries, orderService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	orderID := uuid.New()
	first, err := orderService.CreateOrder(c, createOrderRequest(orderID))
	require.NoError(t, err)

	// the resubmission must land on the already-created order, not a
	// second row
	resubmitted := createOrderRequest(orderID)
	resubmitted.Total = decimal.NewFromInt(999)
	second, err := orderService.CreateOrder(c, resubmitted)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)

	items, err := queries.FindOrderItemsByOrderId(c, orderID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	status, err := orderService.FindOrderStatus(c, orderID)
	require.NoError(t, err)
	assert.True(t, status.Total.Equal(decimal.NewFromFloat(126.75)))
}

func TestFindOrderStatusUnknownOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := context.Background()
	pool, pgContainer, _, orderService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := orderService.FindOrderStatus(c, uuid.New())
	assert.ErrorIs(t, err, commonErrors.ErrOrderNotFound)
}

func TestHandlePaymentWebhookTransitions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	tests := []struct {
		name   string
		status string
	}{
		{"gateway reports paid", response.PaymentPaid},
		{"gateway reports failed", response.PaymentFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			pool, pgContainer, _, orderService := setup(t)(c)
			defer teardown(t)(pool, pgContainer)

			orderID := uuid.New()
			_, err := orderService.CreateOrder(c, createOrderRequest(orderID))
			require.NoError(t, err)

			updated, err := orderService.HandlePaymentWebhook(c, request.PaymentWebhook{
				OrderID:   orderID,
				SessionID: "sess_01",
				Status:    tt.status,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, updated.PaymentStatus)

			status, err := orderService.FindOrderStatus(c, orderID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status.PaymentStatus)
		})
	}
}

func TestHandlePaymentWebhookUnknownOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := context.Background()
	pool, pgContainer, _, orderService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := orderService.HandlePaymentWebhook(c, request.PaymentWebhook{
		OrderID:   uuid.New(),
		SessionID: "sess_01",
		Status:    response.PaymentPaid,
	})
	assert.ErrorIs(t, err, commonErrors.ErrOrderNotFound)
}
