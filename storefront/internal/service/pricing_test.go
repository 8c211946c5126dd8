package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/catalog"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/pricing"
)

type stubDiscounter struct {
	amount decimal.Decimal
}

func (s stubDiscounter) Discount(context.Context, []entry.SimpleItem) decimal.Decimal {
	return s.amount
}

type stubShipping struct {
	rule pricing.ShippingRule
}

func (s stubShipping) Rule(context.Context, decimal.Decimal) pricing.ShippingRule {
	return s.rule
}

// stubCoupons validates every code at a fixed discount until rejectAll
// flips, then rejects everything. calls counts validation round-trips.
type stubCoupons struct {
	discount  decimal.Decimal
	rejectAll bool
	calls     int
}

func (s *stubCoupons) Validate(
	_ context.Context,
	_ string,
	_ entry.Cart,
) (decimal.Decimal, error) {
	s.calls++
	if s.rejectAll {
		return decimal.Zero, commonErrors.ErrCouponRejected
	}
	return s.discount, nil
}

type stubCatalog struct {
	snapshot catalog.Snapshot
}

func (s stubCatalog) Snapshot(context.Context) (catalog.Snapshot, error) {
	return s.snapshot, nil
}

func newPricingFixture(coupons *stubCoupons) (*PricingService, *CartService) {
	cartService, _ := newTestService()
	svc := NewPricingService(
		cartService,
		stubDiscounter{amount: decimal.Zero},
		stubShipping{rule: pricing.ShippingRule{
			Threshold: decimal.NewFromInt(200),
			Cost:      decimal.NewFromFloat(6.95),
			Region:    "us",
		}},
		coupons,
		stubCatalog{},
		pricing.NewAdvisor(decimal.NewFromInt(15)),
	)
	return svc, cartService
}

func TestApplyCouponOnEmptyCart(t *testing.T) {
	svc, _ := newPricingFixture(&stubCoupons{discount: decimal.NewFromInt(10)})

	_, err := svc.ApplyCoupon(context.Background(), "session-1", "SAVE10")
	assert.ErrorIs(t, err, commonErrors.ErrCartEmpty)
}

func TestApplyCouponLowersQuote(t *testing.T) {
	coupons := &stubCoupons{discount: decimal.NewFromInt(30)}
	svc, cartService := newPricingFixture(coupons)
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 2))
	require.NoError(t, err)

	quote, err := svc.ApplyCoupon(ctx, "session-1", "SAVE30")
	require.NoError(t, err)
	assert.True(t, quote.CouponDiscount.Equal(decimal.NewFromInt(30)))
}

func TestCouponRevalidatedWhenSubtotalChanges(t *testing.T) {
	coupons := &stubCoupons{discount: decimal.NewFromInt(30)}
	svc, cartService := newPricingFixture(coupons)
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 2))
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, "session-1", "SAVE30")
	require.NoError(t, err)
	assert.Equal(t, 1, coupons.calls)

	// unchanged subtotal: no extra validation round-trip
	_, err = svc.Quote(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, coupons.calls)

	// subtotal moved: the coupon is revalidated
	_, _, err = cartService.AddItem(ctx, "session-1", teeItem("m", 1))
	require.NoError(t, err)
	_, err = svc.Quote(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, coupons.calls)
}

func TestCouponClearedWhenRevalidationRejects(t *testing.T) {
	coupons := &stubCoupons{discount: decimal.NewFromInt(30)}
	svc, cartService := newPricingFixture(coupons)
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 2))
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, "session-1", "SAVE30")
	require.NoError(t, err)

	coupons.rejectAll = true
	_, _, err = cartService.AddItem(ctx, "session-1", teeItem("m", 1))
	require.NoError(t, err)

	quote, err := svc.Quote(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, quote.CouponDiscount.IsZero())

	// the cleared coupon stays cleared; no further validation attempts
	calls := coupons.calls
	_, err = svc.Quote(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, calls, coupons.calls)
}

func TestApplyRefreshedDropsStaleSequence(t *testing.T) {
	svc, _ := newPricingFixture(&stubCoupons{})

	newer := pricing.Quote{Total: decimal.NewFromInt(300)}
	older := pricing.Quote{Total: decimal.NewFromInt(100)}

	assert.True(t, svc.ApplyRefreshed("session-1", 7, 42, newer))
	// a slower response from an earlier cart state must not win
	assert.False(t, svc.ApplyRefreshed("session-1", 3, 41, older))

	cached, ok := svc.refreshedFor("session-1", 42)
	require.True(t, ok)
	assert.True(t, cached.Total.Equal(decimal.NewFromInt(300)))
}

func TestQuoteIgnoresRefreshedWithStaleHash(t *testing.T) {
	coupons := &stubCoupons{}
	svc, cartService := newPricingFixture(coupons)
	ctx := context.Background()

	_, _, err := cartService.AddItem(ctx, "session-1", teeItem("m", 2))
	require.NoError(t, err)

	// refreshed under a content hash that no longer matches the cart
	svc.ApplyRefreshed("session-1", 1, 12345, pricing.Quote{Total: decimal.NewFromInt(999)})

	quote, err := svc.Quote(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, quote.Total.Equal(decimal.NewFromInt(999)))
}

func TestSuggestionsEmptyWhenShippingFree(t *testing.T) {
	svc, cartService := newPricingFixture(&stubCoupons{})
	ctx := context.Background()

	item := teeItem("m", 1)
	item.UnitPrice = decimal.NewFromInt(250)
	_, _, err := cartService.AddItem(ctx, "session-1", item)
	require.NoError(t, err)

	suggestions, err := svc.Suggestions(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
