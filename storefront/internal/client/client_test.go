package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
)

func simpleCart() entry.Cart {
	return entry.Cart{Entries: []entry.Entry{
		entry.NewSimple(entry.SimpleItem{
			Key:       entry.VariantKey{ProductID: uuid.New(), Size: "m", Color: "navy"},
			Name:      "Crew Tee",
			UnitPrice: decimal.NewFromFloat(24.90),
			Quantity:  2,
		}),
	}}
}

func TestShippingClientParsesRule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipping/calculate", r.URL.Path)
		reqBody := shippingRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "us", reqBody.Region)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"isFreeShipping": false,
			"shippingCost":   "6.95",
			"rule":           map[string]string{"freeShippingAt": "200"},
		})
	}))
	defer server.Close()

	cl := NewShippingClient(server.URL, "us", decimal.NewFromFloat(6.95))
	rule := cl.Rule(context.Background(), decimal.NewFromInt(50))
	assert.True(t, rule.Threshold.Equal(decimal.NewFromInt(200)))
	assert.True(t, rule.Cost.Equal(decimal.NewFromFloat(6.95)))
}

func TestShippingClientKeepsPaidRateOnFreeShipping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"isFreeShipping": true,
			"shippingCost":   "0",
			"rule":           map[string]string{"freeShippingAt": "200"},
		})
	}))
	defer server.Close()

	// the rule carries the paid rate even for an eligible subtotal, so a
	// later discount dropping the cart below the threshold re-prices
	cl := NewShippingClient(server.URL, "us", decimal.NewFromFloat(6.95))
	rule := cl.Rule(context.Background(), decimal.NewFromInt(250))
	assert.True(t, rule.Cost.Equal(decimal.NewFromFloat(6.95)))
}

func TestShippingClientFallsBackWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cl := NewShippingClient(server.URL, "us", decimal.NewFromFloat(6.95))
	rule := cl.Rule(context.Background(), decimal.NewFromInt(500))
	assert.True(t, rule.Cost.Equal(decimal.NewFromFloat(6.95)))
	// the fallback threshold is unreachable so the quote stays paid
	assert.True(t, rule.Threshold.GreaterThan(decimal.NewFromInt(1000000)))
}

func TestBundleDiscountClientDegradesToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cl := NewBundleDiscountClient(server.URL)
	discount := cl.Discount(context.Background(), simpleCart().SimpleItems())
	assert.True(t, discount.IsZero())
}

func TestBundleDiscountClientReturnsDiscount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bundle-discounts", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hasBundleDiscount": true,
			"discountAmount":    "12.50",
		})
	}))
	defer server.Close()

	cl := NewBundleDiscountClient(server.URL)
	discount := cl.Discount(context.Background(), simpleCart().SimpleItems())
	assert.True(t, discount.Equal(decimal.NewFromFloat(12.50)))
}

func TestBundleDiscountClientSkipsEmptyItems(t *testing.T) {
	cl := NewBundleDiscountClient("http://localhost:1")
	discount := cl.Discount(context.Background(), nil)
	assert.True(t, discount.IsZero())
}

func TestCouponClientAcceptsValidCoupon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coupons/validate", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"discountAmount": "10",
			"coupon":         map[string]string{"code": "SAVE10"},
		})
	}))
	defer server.Close()

	cl := NewCouponClient(server.URL)
	discount, err := cl.Validate(context.Background(), "SAVE10", simpleCart())
	require.NoError(t, err)
	assert.True(t, discount.Equal(decimal.NewFromInt(10)))
}

func TestCouponClientRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "minimum order not met"})
	}))
	defer server.Close()

	cl := NewCouponClient(server.URL)
	_, err := cl.Validate(context.Background(), "SAVE10", simpleCart())
	assert.ErrorIs(t, err, commonErrors.ErrCouponRejected)
	assert.Contains(t, err.Error(), "minimum order not met")
}
