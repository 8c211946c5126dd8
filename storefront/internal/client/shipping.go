package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/pricing"
)

type shippingRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Region   string          `json:"region"`
	Weight   decimal.Decimal `json:"weight"`
}

type shippingResponse struct {
	IsFreeShipping           bool            `json:"isFreeShipping"`
	ShippingCost             decimal.Decimal `json:"shippingCost"`
	RemainingForFreeShipping decimal.Decimal `json:"remainingForFreeShipping"`
	Rule                     struct {
		FreeShippingAt decimal.Decimal `json:"freeShippingAt"`
	} `json:"rule"`
}

// ShippingClient fetches the shipping rule for a subtotal and region.
// On failure it falls back to paid standard shipping with an
// unreachable threshold, keeping the quote conservative.
type ShippingClient struct {
	baseURL  string
	region   string
	fallback pricing.ShippingRule
	client   *http.Client
}

func NewShippingClient(baseURL, region string, fallbackCost decimal.Decimal) *ShippingClient {
	return &ShippingClient{
		baseURL: baseURL,
		region:  region,
		fallback: pricing.ShippingRule{
			Threshold: decimal.NewFromInt(1 << 30),
			Cost:      fallbackCost,
			Region:    region,
		},
		client: newHTTPClient(),
	}
}

func (cl *ShippingClient) Rule(c context.Context, subtotal decimal.Decimal) pricing.ShippingRule {
	c, span := otel.Tracer.Start(c, "ShippingClient Rule")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingClient Rule").
		Str(log.KeySubtotal, subtotal.String()).
		Logger()

	reqBody := shippingRequest{Subtotal: subtotal, Region: cl.region}
	respBody := shippingResponse{}
	status, err := postJSON(c, cl.client, cl.baseURL+"/shipping/calculate", reqBody, &respBody)
	if err != nil {
		err = fmt.Errorf("failed calculating shipping with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cl.fallback
	}
	if status != http.StatusOK {
		logger.Error().Msgf("failed calculating shipping with status=%d", status)
		return cl.fallback
	}

	// an eligible subtotal comes back with a zero cost; keep the paid
	// rate around so a later coupon can still drop the cart below the
	// threshold and be charged correctly
	cost := respBody.ShippingCost
	if respBody.IsFreeShipping && cost.IsZero() {
		cost = cl.fallback.Cost
	}
	return pricing.ShippingRule{
		Threshold: respBody.Rule.FreeShippingAt,
		Cost:      cost,
		Region:    cl.region,
	}
}
