package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	orderRequest "github.com/adiwardana/commerce/order/pkg/request"
	orderResponse "github.com/adiwardana/commerce/order/pkg/response"
	"github.com/adiwardana/commerce/storefront/internal/store"
	"github.com/adiwardana/commerce/storefront/pkg/response"
)

type OrderCreator interface {
	CreateOrder(c context.Context, order orderRequest.CreateOrder) (orderResponse.CreateOrder, error)
	OrderStatus(c context.Context, orderID uuid.UUID) (orderResponse.OrderStatus, error)
}

type PaymentSessioner interface {
	CreateSession(c context.Context, orderID uuid.UUID, returnURL string) (string, error)
}

// CheckoutService drives a checkout attempt from customer validation
// through order submission to the payment-session handoff, and resolves
// the outcome when the shopper returns from the gateway redirect.
type CheckoutService struct {
	cart      *CartService
	pricing   *PricingService
	orders    OrderCreator
	payments  PaymentSessioner
	returnURL string
	currency  string

	// order id per session, minted once per validated attempt and
	// reused on resubmit so a retried submission cannot create a
	// second order
	mu       sync.Mutex
	attempts map[string]uuid.UUID
}

func NewCheckoutService(
	cart *CartService,
	pricing *PricingService,
	orders OrderCreator,
	payments PaymentSessioner,
	returnURL, currency string,
) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		pricing:   pricing,
		orders:    orders,
		payments:  payments,
		returnURL: returnURL,
		currency:  currency,
		attempts:  map[string]uuid.UUID{},
	}
}

func (s *CheckoutService) attemptOrderID(sessionID string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if orderID, ok := s.attempts[sessionID]; ok {
		return orderID
	}
	orderID := uuid.New()
	s.attempts[sessionID] = orderID
	return orderID
}

func (s *CheckoutService) finishAttempt(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, sessionID)
}

// Submit runs one checkout attempt. The result's state tells the
// caller where it stopped: collecting on a validation failure,
// order-failed when the order service rejected the submission (still
// resubmittable), payment-failed when the order exists but no payment
// session could be opened, redirected on success.
func (s *CheckoutService) Submit(
	c context.Context,
	sessionID string,
	customer orderRequest.Customer,
) (response.CheckoutResult, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Submit").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating customer").Logger()
	logger.Info().Msg("validating customer")
	err := validator.New(validator.WithRequiredStructEnabled()).StructCtx(c, customer)
	if err != nil {
		logger.Info().Err(err).Msg("customer validation failed")
		return response.CheckoutResult{
			State:   response.StateCollecting,
			Message: err.Error(),
		}, nil
	}
	logger.Info().Msg("validated customer")

	logger = logger.With().Str(log.KeyProcess, "loading cart snapshot").Logger()
	cart, err := s.cart.Snapshot(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	if cart.IsEmpty() {
		err = commonErrors.ErrCartEmpty
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "computing quote").Logger()
	quote, err := s.pricing.Quote(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed computing quote with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}

	orderID := s.attemptOrderID(sessionID)
	logger = logger.With().
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyState, string(response.StateOrderSubmitting)).
		Logger()

	couponCode := ""
	if coupon, ok := s.pricing.couponState(sessionID); ok {
		couponCode = coupon.Code
	}
	order := orderRequest.CreateOrder{
		ID:             orderID,
		Customer:       customer,
		Items:          orderItems(cart),
		CouponCode:     couponCode,
		DiscountAmount: quote.BundleDiscount.Add(quote.CouponDiscount),
		Subtotal:       quote.Subtotal,
		ShippingCost:   quote.ShippingCost,
		Total:          quote.Total,
		Currency:       s.currency,
	}

	logger.Info().Msg("submitting order")
	created, err := s.orders.CreateOrder(c, order)
	if err != nil {
		err = fmt.Errorf("failed submitting order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		// the attempt id is kept so a resubmission reuses it
		return response.CheckoutResult{
			State:   response.StateOrderFailed,
			Message: err.Error(),
		}, nil
	}
	orderID = created.OrderID
	logger.Info().Msg("submitted order")

	// persisted before the payment redirect so a reload can still
	// correlate the return even without the URL parameter
	logger = logger.With().Str(log.KeyProcess, "saving last order id").Logger()
	err = s.cart.SaveLastOrderID(c, sessionID, orderID)
	if err != nil {
		err = fmt.Errorf("failed saving last order id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}

	logger = logger.With().
		Str(log.KeyProcess, "creating payment session").
		Str(log.KeyState, string(response.StatePaymentInitiating)).
		Logger()
	logger.Info().Msg("creating payment session")
	returnURL := fmt.Sprintf("%s?orderId=%s", s.returnURL, orderID)
	paymentURL, err := s.payments.CreateSession(c, orderID, returnURL)
	if err != nil {
		err = fmt.Errorf("failed creating payment session with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		// the order exists server-side with no payment attempt; it is
		// surfaced but not retried or voided here
		s.finishAttempt(sessionID)
		return response.CheckoutResult{
			State:   response.StatePaymentFailed,
			OrderID: orderID,
			Message: err.Error(),
		}, nil
	}
	logger.Info().Msg("created payment session")

	// the cart stays intact until the payment outcome is confirmed
	s.finishAttempt(sessionID)
	return response.CheckoutResult{
		State:      response.StateRedirected,
		OrderID:    orderID,
		PaymentURL: paymentURL,
	}, nil
}

// Resolve handles the return from the payment redirect. The cart is
// cleared eagerly on arrival, before the status lookup; a shopper
// landing here has either paid or walked away from the attempt.
func (s *CheckoutService) Resolve(
	c context.Context,
	sessionID string,
	orderIDParam string,
) (response.PaymentReturn, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Resolve").
		Str(log.KeySessionID, sessionID).
		Logger()

	orderID, err := uuid.Parse(orderIDParam)
	if err != nil {
		logger.Info().Msg("missing order id parameter, falling back to stored id")
		orderID, err = s.cart.LastOrderID(c, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrNoLastOrder) {
				err = commonErrors.ErrOrderNotFound
			}
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.PaymentReturn{}, err
		}
	}
	logger = logger.With().Str(log.KeyOrderID, orderID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart on payment return")
	err = s.cart.Clear(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	s.pricing.clearCouponState(sessionID)
	s.pricing.invalidateRefreshed(sessionID)
	s.finishAttempt(sessionID)

	logger = logger.With().Str(log.KeyProcess, "resolving payment status").Logger()
	logger.Info().Msg("resolving payment status")
	status, err := s.orders.OrderStatus(c, orderID)
	if err != nil {
		err = fmt.Errorf("failed resolving payment status with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		// ambiguous outcome renders as processing, never as paid
		return response.PaymentReturn{
			OrderID: orderID,
			Status:  response.ReturnProcessing,
		}, nil
	}
	logger.Info().Str(log.KeyPaymentStatus, status.PaymentStatus).Msg("resolved payment status")

	returnStatus := response.ReturnProcessing
	switch status.PaymentStatus {
	case orderResponse.PaymentPaid:
		returnStatus = response.ReturnPaid
	case orderResponse.PaymentFailed:
		returnStatus = response.ReturnFailed
	}

	return response.PaymentReturn{
		OrderID:     orderID,
		OrderNumber: status.OrderNumber,
		Total:       status.Total,
		Status:      returnStatus,
	}, nil
}

// orderItems flattens cart entries into order lines. A bundle entry
// becomes one line charged at the bundle price; its sub-item prices
// were display-only all along.
func orderItems(cart entry.Cart) []orderRequest.OrderItem {
	items := make([]orderRequest.OrderItem, 0, len(cart.Entries))
	for _, e := range cart.Entries {
		switch e.Kind {
		case entry.KindSimple:
			items = append(items, orderRequest.OrderItem{
				ProductID: e.Item.Key.ProductID,
				Name:      e.Item.Name,
				Size:      e.Item.Key.Size,
				Color:     e.Item.Key.Color,
				Quantity:  e.Item.Quantity,
				UnitPrice: e.Item.UnitPrice,
			})
		case entry.KindBundle:
			items = append(items, orderRequest.OrderItem{
				ProductID: e.Bundle.BundleID,
				Name:      e.Bundle.Name,
				Quantity:  e.Bundle.Quantity,
				UnitPrice: e.Bundle.UnitPrice,
			})
		}
	}
	return items
}
