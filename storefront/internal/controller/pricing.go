package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	commonHttp "github.com/adiwardana/commerce/internal/http"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/storefront/internal/service"
	"github.com/adiwardana/commerce/storefront/pkg/request"
)

type PricingController struct {
	service *service.PricingService
}

func AttachPricingController(router *mux.Router, svc *service.PricingService) {
	controller := PricingController{service: svc}

	r := router.PathPrefix("/carts/{sessionId}").Subrouter()
	r.HandleFunc("/quote", controller.Quote).Methods(http.MethodGet)
	r.HandleFunc("/coupon", controller.ApplyCoupon).Methods(http.MethodPost)
	r.HandleFunc("/coupon", controller.RemoveCoupon).Methods(http.MethodDelete)
	r.HandleFunc("/suggestions", controller.Suggestions).Methods(http.MethodGet)
}

func (t PricingController) Quote(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PricingController Quote")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingController Quote").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "computing quote").
		Logger()

	c = logger.WithContext(c)
	quote, err := t.service.Quote(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed computing quote with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "quote computed",
		"data":       map[string]interface{}{"quote": quote},
	})
}

func (t PricingController) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PricingController ApplyCoupon")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingController ApplyCoupon").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.ApplyCoupon{}
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

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "applying coupon").
		Str(log.KeyCoupon, reqBody.Code).
		Logger()
	logger.Info().Msg("applying coupon")
	c = logger.WithContext(c)
	quote, err := t.service.ApplyCoupon(c, sessionID, reqBody.Code)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, commonErrors.ErrCouponRejected):
			statusCode = http.StatusUnprocessableEntity
		case errors.Is(err, commonErrors.ErrCartEmpty):
			statusCode = http.StatusBadRequest
		}
		err = fmt.Errorf("failed applying coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("applied coupon")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "coupon applied",
		"data":       map[string]interface{}{"quote": quote},
	})
}

func (t PricingController) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PricingController RemoveCoupon")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingController RemoveCoupon").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "removing coupon").
		Logger()

	logger.Info().Msg("removing coupon")
	c = logger.WithContext(c)
	quote, err := t.service.RemoveCoupon(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed removing coupon with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed coupon")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "coupon removed",
		"data":       map[string]interface{}{"quote": quote},
	})
}

func (t PricingController) Suggestions(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PricingController Suggestions")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PricingController Suggestions").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "computing suggestions").
		Logger()

	c = logger.WithContext(c)
	suggestions, err := t.service.Suggestions(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed computing suggestions with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "suggestions computed",
		"data":       map[string]interface{}{"suggestions": suggestions},
	})
}
