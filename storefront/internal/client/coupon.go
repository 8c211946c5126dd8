package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
)

type couponItem struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}

type couponRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cartTotal"`
	Items     []couponItem    `json:"items"`
}

type couponResponse struct {
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Coupon         struct {
		Code string `json:"code"`
	} `json:"coupon"`
	Message string `json:"message"`
}

// CouponClient validates a coupon code against the current cart. A
// rejection is a normal outcome here, not a transport failure, and is
// returned as ErrCouponRejected so callers clear the applied coupon.
type CouponClient struct {
	baseURL string
	client  *http.Client
}

func NewCouponClient(baseURL string) *CouponClient {
	return &CouponClient{baseURL: baseURL, client: newHTTPClient()}
}

func (cl *CouponClient) Validate(
	c context.Context,
	code string,
	cart entry.Cart,
) (decimal.Decimal, error) {
	c, span := otel.Tracer.Start(c, "CouponClient Validate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponClient Validate").
		Str(log.KeyCoupon, code).
		Logger()

	reqBody := couponRequest{Code: code, CartTotal: cart.Subtotal()}
	for _, item := range cart.SimpleItems() {
		reqBody.Items = append(reqBody.Items, couponItem{
			ProductID: item.Key.ProductID.String(),
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	respBody := couponResponse{}
	status, err := postJSON(c, cl.client, cl.baseURL+"/coupons/validate", reqBody, &respBody)
	if err != nil {
		err = fmt.Errorf("failed validating coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return decimal.Zero, err
	}
	if status != http.StatusOK || respBody.Coupon.Code == "" {
		err = fmt.Errorf("%w: %s", commonErrors.ErrCouponRejected, respBody.Message)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg("coupon rejected")
		return decimal.Zero, err
	}

	return respBody.DiscountAmount, nil
}
