package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
)

type paymentSessionRequest struct {
	OrderID   string `json:"orderId"`
	ReturnURL string `json:"returnUrl"`
}

type paymentSessionResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// PaymentClient opens a payment session at the external gateway. The
// shopper completes payment by full navigation to the returned URL.
type PaymentClient struct {
	baseURL string
	client  *http.Client
}

func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{baseURL: baseURL, client: newHTTPClient()}
}

func (cl *PaymentClient) CreateSession(
	c context.Context,
	orderID uuid.UUID,
	returnURL string,
) (string, error) {
	c, span := otel.Tracer.Start(c, "PaymentClient CreateSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentClient CreateSession").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	reqBody := paymentSessionRequest{OrderID: orderID.String(), ReturnURL: returnURL}
	respBody := paymentSessionResponse{}
	status, err := postJSON(c, cl.client, cl.baseURL+"/sessions", reqBody, &respBody)
	if err != nil {
		err = fmt.Errorf("failed creating payment session with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK || respBody.PaymentURL == "" {
		err = fmt.Errorf("%w: status=%d", commonErrors.ErrPaymentSessionFailed, status)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	return respBody.PaymentURL, nil
}
