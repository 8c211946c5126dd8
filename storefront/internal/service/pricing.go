package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/catalog"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/pricing"
)

type BundleDiscounter interface {
	Discount(c context.Context, items []entry.SimpleItem) decimal.Decimal
}

type ShippingRuler interface {
	Rule(c context.Context, subtotal decimal.Decimal) pricing.ShippingRule
}

type CouponValidator interface {
	Validate(c context.Context, code string, cart entry.Cart) (decimal.Decimal, error)
}

type CatalogSource interface {
	Snapshot(c context.Context) (catalog.Snapshot, error)
}

// PricingService computes quotes from the live cart plus the external
// discount and shipping inputs, and tracks the per-session coupon
// state. A coupon stays applied only while the subtotal it was
// validated at holds; a subtotal change triggers revalidation and a
// rejection clears it.
type PricingService struct {
	cart      *CartService
	discounts BundleDiscounter
	shipping  ShippingRuler
	coupons   CouponValidator
	catalog   CatalogSource
	advisor   *pricing.Advisor

	mu           sync.Mutex
	couponStates map[string]pricing.CouponState
	refreshed    map[string]refreshedQuote
}

// refreshedQuote is a quote computed in the background by the
// refresher, tagged with the cart-event sequence and content hash it
// was computed against.
type refreshedQuote struct {
	seq   uint64
	hash  uint64
	quote pricing.Quote
}

func NewPricingService(
	cart *CartService,
	discounts BundleDiscounter,
	shipping ShippingRuler,
	coupons CouponValidator,
	catalogSource CatalogSource,
	advisor *pricing.Advisor,
) *PricingService {
	return &PricingService{
		cart:         cart,
		discounts:    discounts,
		shipping:     shipping,
		coupons:      coupons,
		catalog:      catalogSource,
		advisor:      advisor,
		couponStates: map[string]pricing.CouponState{},
		refreshed:    map[string]refreshedQuote{},
	}
}

// ApplyRefreshed records a background-computed quote. A result carrying
// an older sequence than the one already recorded is dropped, so a slow
// response can never overwrite a newer cart's quote.
func (s *PricingService) ApplyRefreshed(
	sessionID string,
	seq, hash uint64,
	quote pricing.Quote,
) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.refreshed[sessionID]; ok && current.seq > seq {
		return false
	}
	s.refreshed[sessionID] = refreshedQuote{seq: seq, hash: hash, quote: quote}
	return true
}

func (s *PricingService) refreshedFor(sessionID string, hash uint64) (pricing.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cached, ok := s.refreshed[sessionID]
	if !ok || cached.hash != hash {
		return pricing.Quote{}, false
	}
	return cached.quote, true
}

func (s *PricingService) invalidateRefreshed(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshed, sessionID)
}

func (s *PricingService) couponState(sessionID string) (pricing.CouponState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.couponStates[sessionID]
	return state, ok
}

func (s *PricingService) setCouponState(sessionID string, state pricing.CouponState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couponStates[sessionID] = state
}

func (s *PricingService) clearCouponState(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.couponStates, sessionID)
}

// Quote recomputes the full breakdown against the cart as of the most
// recent completed mutation. Nothing is cached across mutations.
func (s *PricingService) Quote(c context.Context, sessionID string) (pricing.Quote, error) {
	c, span := otel.Tracer.Start(c, "PricingService Quote")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingService Quote").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart snapshot").Logger()
	cart, err := s.cart.Snapshot(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Quote{}, err
	}
	if cart.IsEmpty() {
		return pricing.Quote{}, nil
	}

	// a background-refreshed quote is served only while its content
	// hash still matches the live cart
	if quote, ok := s.refreshedFor(sessionID, cart.ContentHash()); ok {
		return quote, nil
	}

	quote := s.quoteSnapshot(c, sessionID, cart)
	logger.Info().
		Str(log.KeySubtotal, quote.Subtotal.String()).
		Str(log.KeyTotal, quote.Total.String()).
		Msg("computed quote")
	return quote, nil
}

// quoteSnapshot prices a fixed snapshot. Bundle-discount and shipping
// lookups degrade to conservative defaults inside their clients, so
// this never fails, it only gets less optimized.
func (s *PricingService) quoteSnapshot(
	c context.Context,
	sessionID string,
	cart entry.Cart,
) pricing.Quote {
	c, span := otel.Tracer.Start(c, "PricingService quoteSnapshot")
	defer span.End()

	bundleDiscount := s.discounts.Discount(c, cart.SimpleItems())
	rule := s.shipping.Rule(c, cart.Subtotal())

	coupon := s.revalidatedCoupon(c, sessionID, cart)
	return pricing.Compute(cart, bundleDiscount, coupon, rule)
}

// revalidatedCoupon returns the applied coupon, revalidating it first
// when the subtotal moved since it was accepted. A rejection on
// revalidation clears the coupon so the shopper is re-prompted.
func (s *PricingService) revalidatedCoupon(
	c context.Context,
	sessionID string,
	cart entry.Cart,
) *pricing.CouponState {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingService revalidatedCoupon").
		Str(log.KeySessionID, sessionID).
		Logger()

	state, ok := s.couponState(sessionID)
	if !ok {
		return nil
	}
	if state.ValidatedSubtotal.Equal(cart.Subtotal()) {
		return &state
	}

	logger = logger.With().Str(log.KeyCoupon, state.Code).Logger()
	logger.Info().Msg("subtotal changed, revalidating coupon")
	discount, err := s.coupons.Validate(c, state.Code, cart)
	if err != nil {
		logger.Info().Err(err).Msg("coupon no longer valid, clearing")
		s.clearCouponState(sessionID)
		s.invalidateRefreshed(sessionID)
		return nil
	}

	state = pricing.CouponState{
		Code:              state.Code,
		DiscountAmount:    discount,
		ValidatedSubtotal: cart.Subtotal(),
	}
	s.setCouponState(sessionID, state)
	return &state
}

func (s *PricingService) ApplyCoupon(
	c context.Context,
	sessionID, code string,
) (pricing.Quote, error) {
	c, span := otel.Tracer.Start(c, "PricingService ApplyCoupon")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingService ApplyCoupon").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyCoupon, code).
		Logger()

	cart, err := s.cart.Snapshot(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Quote{}, err
	}
	if cart.IsEmpty() {
		err = commonErrors.ErrCartEmpty
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Quote{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating coupon").Logger()
	logger.Info().Msg("validating coupon")
	discount, err := s.coupons.Validate(c, code, cart)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg("coupon rejected")
		return pricing.Quote{}, err
	}
	logger.Info().Msg("validated coupon")

	s.setCouponState(sessionID, pricing.CouponState{
		Code:              code,
		DiscountAmount:    discount,
		ValidatedSubtotal: cart.Subtotal(),
	})
	s.invalidateRefreshed(sessionID)

	return s.quoteSnapshot(c, sessionID, cart), nil
}

func (s *PricingService) RemoveCoupon(c context.Context, sessionID string) (pricing.Quote, error) {
	c, span := otel.Tracer.Start(c, "PricingService RemoveCoupon")
	defer span.End()

	s.clearCouponState(sessionID)
	s.invalidateRefreshed(sessionID)
	return s.Quote(c, sessionID)
}

// RefreshSession recomputes the quote for one session in the
// background, tagging the result with the cart-event sequence that
// requested it.
func (s *PricingService) RefreshSession(c context.Context, sessionID string, seq uint64) error {
	c, span := otel.Tracer.Start(c, "PricingService RefreshSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingService RefreshSession").
		Str(log.KeySessionID, sessionID).
		Uint64(log.KeySequence, seq).
		Logger()

	cart, err := s.cart.Snapshot(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if cart.IsEmpty() {
		s.invalidateRefreshed(sessionID)
		return nil
	}

	quote := s.quoteSnapshot(c, sessionID, cart)
	applied := s.ApplyRefreshed(sessionID, seq, cart.ContentHash(), quote)
	logger.Info().Bool("applied", applied).Msg("refreshed quote")
	return nil
}

// Suggestions proposes catalog products that close the remaining
// free-shipping gap. An eligible or empty cart yields none.
func (s *PricingService) Suggestions(
	c context.Context,
	sessionID string,
) ([]pricing.Suggestion, error) {
	c, span := otel.Tracer.Start(c, "PricingService Suggestions")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingService Suggestions").
		Str(log.KeySessionID, sessionID).
		Logger()

	cart, err := s.cart.Snapshot(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if cart.IsEmpty() {
		return []pricing.Suggestion{}, nil
	}

	quote := s.quoteSnapshot(c, sessionID, cart)
	if quote.FreeShipping {
		return []pricing.Suggestion{}, nil
	}

	snapshot, err := s.catalog.Snapshot(c)
	if err != nil {
		err = fmt.Errorf("failed loading catalog snapshot with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	return s.advisor.Suggest(cart, quote.RemainingForFreeShipping, snapshot), nil
}
