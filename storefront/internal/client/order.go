package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/order/pkg/request"
	"github.com/adiwardana/commerce/order/pkg/response"
)

// OrderClient submits orders to the order service and resolves payment
// status by order id. Failures here block checkout, so unlike the
// pricing clients they are returned, not swallowed.
type OrderClient struct {
	baseURL string
	client  *http.Client
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{baseURL: baseURL, client: newHTTPClient()}
}

func (cl *OrderClient) CreateOrder(
	c context.Context,
	order request.CreateOrder,
) (response.CreateOrder, error) {
	c, span := otel.Tracer.Start(c, "OrderClient CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderClient CreateOrder").
		Str(log.KeyOrderID, order.ID.String()).
		Logger()

	respBody := response.CreateOrder{}
	status, err := postJSON(c, cl.client, cl.baseURL+"/orders", order, &respBody)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		err = fmt.Errorf("%w: status=%d", commonErrors.ErrOrderCreateFailed, status)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}

	return respBody, nil
}

func (cl *OrderClient) OrderStatus(
	c context.Context,
	orderID uuid.UUID,
) (response.OrderStatus, error) {
	c, span := otel.Tracer.Start(c, "OrderClient OrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderClient OrderStatus").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	url := fmt.Sprintf("%s/orders/%s/status", cl.baseURL, orderID)
	req, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("failed creating order status request with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}

	resp, err := cl.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed resolving order status with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return response.OrderStatus{}, commonErrors.ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed resolving order status with status=%d", resp.StatusCode)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}

	respBody := response.OrderStatus{}
	err = json.NewDecoder(resp.Body).Decode(&respBody)
	if err != nil {
		err = fmt.Errorf("failed decoding order status with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.OrderStatus{}, err
	}

	return respBody, nil
}
