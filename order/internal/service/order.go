package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/order/internal/repository"
	"github.com/adiwardana/commerce/order/pkg/request"
	"github.com/adiwardana/commerce/order/pkg/response"
)

// OrderService persists immutable orders and tracks their payment
// outcome. An order row never changes after creation; only its payment
// row moves, and only the gateway webhook moves it.
type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewOrderService(pool *pgxpool.Pool, queries *repository.Queries) *OrderService {
	return &OrderService{pool: pool, queries: queries}
}

func orderNumber(id uuid.UUID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), short)
}

// CreateOrder writes the order, its lines, and a pending payment row in
// one transaction. The id is supplied by the caller; a duplicate
// submission with the same id returns the already-created order instead
// of inserting a second one.
func (s *OrderService) CreateOrder(
	c context.Context,
	param request.CreateOrder,
) (response.CreateOrder, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrder").
		Str(log.KeyOrderID, param.ID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "starting transaction").Logger()
	logger.Info().Msg("starting transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed starting transaction with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().Err(err).Msg("failed rolling back transaction")
		}
	}()
	queries := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	couponCode := pgtype.Text{String: param.CouponCode, Valid: param.CouponCode != ""}
	order, err := queries.InsertOrder(c, repository.InsertOrderParams{
		ID:             param.ID,
		OrderNumber:    orderNumber(param.ID, time.Now()),
		FirstName:      param.Customer.FirstName,
		LastName:       param.Customer.LastName,
		Email:          param.Customer.Email,
		Phone:          param.Customer.Phone,
		Street:         param.Customer.Street,
		City:           param.Customer.City,
		State:          param.Customer.State,
		PostalCode:     param.Customer.PostalCode,
		CouponCode:     couponCode,
		DiscountAmount: repository.NumericFromDecimal(param.DiscountAmount),
		Subtotal:       repository.NumericFromDecimal(param.Subtotal),
		ShippingCost:   repository.NumericFromDecimal(param.ShippingCost),
		Total:          repository.NumericFromDecimal(param.Total),
		Currency:       param.Currency,
	})
	if err != nil {
		// no row back from the conflict-skipping insert means this id
		// was already created; return the existing order untouched
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("order already exists, returning existing order")
			existing, findErr := s.queries.FindOrderById(c, param.ID)
			if findErr != nil {
				findErr = fmt.Errorf("failed finding existing order with error=%w", findErr)
				commonErrors.HandleError(findErr, span)
				logger.Error().Err(findErr).Msg(findErr.Error())
				return response.CreateOrder{}, findErr
			}
			return response.CreateOrder{OrderID: existing.ID}, nil
		}
		err = fmt.Errorf("failed inserting order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	logger.Info().Msg("inserting order items")
	for _, item := range param.Items {
		_, err = queries.InsertOrderItem(c, repository.InsertOrderItemParams{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      pgtype.Text{String: item.Size, Valid: item.Size != ""},
			Color:     pgtype.Text{String: item.Color, Valid: item.Color != ""},
			Quantity:  item.Quantity,
			UnitPrice: repository.NumericFromDecimal(item.UnitPrice),
		})
		if err != nil {
			err = fmt.Errorf("failed inserting order item with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CreateOrder{}, err
		}
	}
	logger.Info().Msg("inserted order items")

	logger = logger.With().Str(log.KeyProcess, "inserting payment").Logger()
	logger.Info().Msg("inserting payment")
	_, err = queries.InsertPayment(c, repository.InsertPaymentParams{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  response.PaymentPending,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting payment with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	logger.Info().Msg("inserted payment")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	logger.Info().Msg("committed transaction")

	return response.CreateOrder{OrderID: order.ID}, nil
}

func (s *OrderService) FindOrderStatus(
	c context.Context,
	orderID uuid.UUID,
) (response.OrderStatus, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderStatus").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	order, err := s.queries.FindOrderById(c, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = commonErrors.ErrOrderNotFound
		} else {
			err = fmt.Errorf("failed finding order with error=%w", err)
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding payment").Logger()
	payment, err := s.queries.FindPaymentByOrderId(c, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// order without payment row renders pending, never paid
			return order.StatusResponse(response.PaymentPending), nil
		}
		err = fmt.Errorf("failed finding payment with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}

	return order.StatusResponse(payment.Status), nil
}

// HandlePaymentWebhook applies the gateway's verdict to the payment
// row. Status transitions arrive only from the gateway callback.
func (s *OrderService) HandlePaymentWebhook(
	c context.Context,
	param request.PaymentWebhook,
) (response.OrderStatus, error) {
	c, span := otel.Tracer.Start(c, "OrderService HandlePaymentWebhook")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService HandlePaymentWebhook").
		Str(log.KeyOrderID, param.OrderID.String()).
		Str(log.KeyPaymentStatus, param.Status).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating payment status").Logger()
	logger.Info().Msg("updating payment status")
	payment, err := s.queries.UpdatePaymentStatus(c, repository.UpdatePaymentStatusParams{
		OrderID:   param.OrderID,
		Status:    param.Status,
		SessionID: pgtype.Text{String: param.SessionID, Valid: param.SessionID != ""},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = commonErrors.ErrOrderNotFound
		} else {
			err = fmt.Errorf("failed updating payment status with error=%w", err)
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}
	logger.Info().Msg("updated payment status")

	order, err := s.queries.FindOrderById(c, param.OrderID)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}

	return order.StatusResponse(payment.Status), nil
}
