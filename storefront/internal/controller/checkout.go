package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	commonHttp "github.com/adiwardana/commerce/internal/http"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/storefront/internal/service"
	"github.com/adiwardana/commerce/storefront/pkg/request"
	"github.com/adiwardana/commerce/storefront/pkg/response"
)

type CheckoutController struct {
	service *service.CheckoutService
}

func AttachCheckoutController(router *mux.Router, svc *service.CheckoutService) {
	controller := CheckoutController{service: svc}

	r := router.PathPrefix("/carts/{sessionId}/checkout").Subrouter()
	r.HandleFunc("", controller.Submit).Methods(http.MethodPost)
	r.HandleFunc("/return", controller.Return).Methods(http.MethodGet)
}

func (t CheckoutController) Submit(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Submit")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Submit").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "submitting checkout").Logger()
	logger.Info().Msg("submitting checkout")
	c = logger.WithContext(c)
	result, err := t.service.Submit(c, sessionID, reqBody.Customer)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrCartEmpty) {
			statusCode = http.StatusBadRequest
		}
		err = fmt.Errorf("failed submitting checkout with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyState, string(result.State)).Msg("submitted checkout")

	statusCode := http.StatusOK
	status := "success"
	switch result.State {
	case response.StateCollecting:
		statusCode = http.StatusUnprocessableEntity
		status = "failed"
	case response.StateOrderFailed, response.StatePaymentFailed:
		statusCode = http.StatusBadGateway
		status = "failed"
	}
	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     status,
		"statusCode": statusCode,
		"message":    string(result.State),
		"data":       map[string]interface{}{"checkout": result},
	})
}

func (t CheckoutController) Return(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Return")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Return").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "resolving payment return").
		Logger()

	logger.Info().Msg("resolving payment return")
	c = logger.WithContext(c)
	result, err := t.service.Resolve(c, sessionID, r.URL.Query().Get("orderId"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrOrderNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed resolving payment return with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyPaymentStatus, result.Status).Msg("resolved payment return")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "payment return resolved",
		"data":       map[string]interface{}{"return": result},
	})
}
