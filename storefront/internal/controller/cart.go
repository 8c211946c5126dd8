package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/bundle"
	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/catalog"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	commonHttp "github.com/adiwardana/commerce/internal/http"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/storefront/internal/service"
	"github.com/adiwardana/commerce/storefront/pkg/request"
)

type CartController struct {
	service *service.CartService
	catalog *catalog.Client
}

func AttachCartController(router *mux.Router, svc *service.CartService, cat *catalog.Client) {
	controller := CartController{service: svc, catalog: cat}

	r := router.PathPrefix("/carts/{sessionId}").Subrouter()
	r.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/bundles", controller.AddBundle).Methods(http.MethodPost)
	r.HandleFunc("/items/{productId}/quantity", controller.SetItemQuantity).
		Methods(http.MethodPut)
	r.HandleFunc("/bundles/{bundleId}/quantity", controller.SetBundleQuantity).
		Methods(http.MethodPut)
	r.HandleFunc("/items/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/bundles/{bundleId}", controller.RemoveBundle).Methods(http.MethodDelete)
	r.HandleFunc("", controller.Snapshot).Methods(http.MethodGet)
	r.HandleFunc("", controller.Clear).Methods(http.MethodDelete)
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddItem{}
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
	logger.Info().Msg("validating request body")
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
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	snapshot, err := t.catalog.Snapshot(c)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	product, found := snapshot.FindProduct(reqBody.ProductID)
	if !found {
		err = fmt.Errorf("product %s not found", reqBody.ProductID)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	logger.Info().Msg("adding item")
	c = logger.WithContext(c)
	item := entry.SimpleItem{
		Key: entry.VariantKey{
			ProductID: reqBody.ProductID,
			Size:      reqBody.Size,
			Color:     reqBody.Color,
		},
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		FitLabel:  product.FitLabel,
		UnitPrice: product.VariantPrice(reqBody.Size, reqBody.Color),
		Quantity:  reqBody.Quantity,
	}
	cart, eventType, err := t.service.AddItem(c, sessionID, item)
	if err != nil {
		err = fmt.Errorf("failed adding item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added item")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("item %s", eventType),
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) AddBundle(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddBundle")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddBundle").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddBundle{}
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
	logger.Info().Msg("validating request body")
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
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "finding bundle").
		Str(log.KeyBundleID, reqBody.BundleID.String()).
		Logger()
	logger.Info().Msg("finding bundle")
	c = logger.WithContext(c)
	def, err := t.catalog.FindBundle(c, reqBody.BundleID)
	if err != nil {
		err = fmt.Errorf("failed finding bundle with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found bundle")

	logger = logger.With().Str(log.KeyProcess, "resolving selections").Logger()
	logger.Info().Msg("resolving selections")
	selections := map[uuid.UUID]bundle.Selection{}
	for rawID, sel := range reqBody.Selections {
		productID, err := uuid.Parse(rawID)
		if err != nil {
			err = fmt.Errorf("failed parsing sub-product id with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		selections[productID] = bundle.Selection{
			Size:     sel.Size,
			Color:    sel.Color,
			Quantity: sel.Quantity,
		}
	}
	subItems, err := bundle.Resolve(def, selections)
	if err != nil {
		incomplete := &bundle.IncompleteSelectionError{}
		statusCode := http.StatusInternalServerError
		if errors.As(err, &incomplete) {
			statusCode = http.StatusBadRequest
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("resolved selections")

	logger = logger.With().Str(log.KeyProcess, "adding bundle").Logger()
	logger.Info().Msg("adding bundle")
	c = logger.WithContext(c)
	item := entry.BundleItem{
		BundleID:  def.ID,
		Name:      def.Name,
		UnitPrice: def.BundlePrice,
		SubItems:  subItems,
	}
	cart, eventType, err := t.service.AddBundle(c, sessionID, item)
	if err != nil {
		err = fmt.Errorf("failed adding bundle with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added bundle")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("bundle %s", eventType),
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetItemQuantity")
	defer span.End()

	pathValues := mux.Vars(r)
	sessionID := pathValues["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetItemQuantity").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing productId").Logger()
	productID, err := uuid.Parse(pathValues["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	reqBody := request.SetQuantity{}
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

	logger = logger.With().Str(log.KeyProcess, "setting item quantity").Logger()
	logger.Info().Msg("setting item quantity")
	c = logger.WithContext(c)
	key := entry.VariantKey{
		ProductID: productID,
		Size:      r.URL.Query().Get("size"),
		Color:     r.URL.Query().Get("color"),
	}
	cart, err := t.service.SetItemQuantity(c, sessionID, key, reqBody.Quantity)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed setting item quantity with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("set item quantity")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "quantity updated",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) SetBundleQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetBundleQuantity")
	defer span.End()

	pathValues := mux.Vars(r)
	sessionID := pathValues["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetBundleQuantity").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing bundleId").Logger()
	bundleID, err := uuid.Parse(pathValues["bundleId"])
	if err != nil {
		err = fmt.Errorf("failed parsing bundleId with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	reqBody := request.SetQuantity{}
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

	logger = logger.With().Str(log.KeyProcess, "setting bundle quantity").Logger()
	logger.Info().Msg("setting bundle quantity")
	c = logger.WithContext(c)
	cart, err := t.service.SetBundleQuantity(c, sessionID, bundleID, reqBody.Quantity)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed setting bundle quantity with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("set bundle quantity")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "quantity updated",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	pathValues := mux.Vars(r)
	sessionID := pathValues["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing productId").Logger()
	productID, err := uuid.Parse(pathValues["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing item").Logger()
	logger.Info().Msg("removing item")
	c = logger.WithContext(c)
	key := entry.VariantKey{
		ProductID: productID,
		Size:      r.URL.Query().Get("size"),
		Color:     r.URL.Query().Get("color"),
	}
	cart, err := t.service.RemoveItem(c, sessionID, key)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed removing item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed item")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "item removed",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) RemoveBundle(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveBundle")
	defer span.End()

	pathValues := mux.Vars(r)
	sessionID := pathValues["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveBundle").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing bundleId").Logger()
	bundleID, err := uuid.Parse(pathValues["bundleId"])
	if err != nil {
		err = fmt.Errorf("failed parsing bundleId with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing bundle").Logger()
	logger.Info().Msg("removing bundle")
	c = logger.WithContext(c)
	cart, err := t.service.RemoveBundle(c, sessionID, bundleID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed removing bundle with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed bundle")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "bundle removed",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) Snapshot(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Snapshot")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Snapshot").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "loading cart").
		Logger()

	c = logger.WithContext(c)
	cart, err := t.service.Snapshot(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
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
		"message":    "cart found",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (t CartController) Clear(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Clear")
	defer span.End()

	sessionID := mux.Vars(r)["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Clear").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	err := t.service.Clear(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart cleared",
	})
}
