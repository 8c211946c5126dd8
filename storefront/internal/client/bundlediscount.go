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

type discountItem struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}

type discountRequest struct {
	Items []discountItem `json:"items"`
}

type discountResponse struct {
	HasBundleDiscount  bool            `json:"hasBundleDiscount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Bundle             struct {
		Name string `json:"name"`
	} `json:"bundle"`
}

// BundleDiscountClient asks the promotion service what cross-item
// discount the simple-item portion of the cart qualifies for. Failures
// degrade to zero discount; the cart keeps working without the promo.
type BundleDiscountClient struct {
	baseURL string
	client  *http.Client
}

func NewBundleDiscountClient(baseURL string) *BundleDiscountClient {
	return &BundleDiscountClient{baseURL: baseURL, client: newHTTPClient()}
}

func (cl *BundleDiscountClient) Discount(
	c context.Context,
	items []entry.SimpleItem,
) decimal.Decimal {
	c, span := otel.Tracer.Start(c, "BundleDiscountClient Discount")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "BundleDiscountClient Discount").
		Logger()

	if len(items) == 0 {
		return decimal.Zero
	}

	reqBody := discountRequest{Items: make([]discountItem, 0, len(items))}
	for _, item := range items {
		reqBody.Items = append(reqBody.Items, discountItem{
			ProductID: item.Key.ProductID.String(),
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	respBody := discountResponse{}
	status, err := postJSON(c, cl.client, cl.baseURL+"/bundle-discounts", reqBody, &respBody)
	if err != nil {
		err = fmt.Errorf("failed calculating bundle discount with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return decimal.Zero
	}
	if status != http.StatusOK || !respBody.HasBundleDiscount {
		return decimal.Zero
	}

	return respBody.DiscountAmount
}
