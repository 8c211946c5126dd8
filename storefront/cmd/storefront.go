package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/adiwardana/commerce/catalog"
	"github.com/adiwardana/commerce/internal/config"
	"github.com/adiwardana/commerce/internal/constants"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/infra"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/middleware"
	"github.com/adiwardana/commerce/internal/otel"
	"github.com/adiwardana/commerce/pricing"
	"github.com/adiwardana/commerce/storefront/internal/client"
	"github.com/adiwardana/commerce/storefront/internal/controller"
	"github.com/adiwardana/commerce/storefront/internal/service"
	"github.com/adiwardana/commerce/storefront/internal/store"
)

func RunStorefrontService(c context.Context) {
	c, span := otel.Tracer.Start(c, "RunStorefrontService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppStorefrontService).
		Str(log.KeyTag, "main RunStorefrontService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppStorefrontService)
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppStorefrontService),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.Auth,
	)
	router.Handle("/metrics", promhttp.Handler())
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppStorefrontService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = otel.ShutdownOtel(c, otelShutdowns)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "shutting down cache").Logger()
		logger.Info().Msg("shutting down cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	catalogClient := catalog.NewClient(cfg.Services.CatalogURL)
	cartStore := store.NewRedisStore(cache)
	cartService := service.NewCartService(cartStore, service.NewRedisPublisher(cache))

	flexCap, err := decimal.NewFromString(cfg.Pricing.AdvisorFlexCap)
	if err != nil {
		err = fmt.Errorf("failed parsing advisor flex cap with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	fallbackShipping, err := decimal.NewFromString(cfg.Pricing.FallbackShippingCost)
	if err != nil {
		err = fmt.Errorf("failed parsing fallback shipping cost with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	pricingService := service.NewPricingService(
		cartService,
		client.NewBundleDiscountClient(cfg.Services.BundleDiscountURL),
		client.NewShippingClient(cfg.Services.ShippingURL, cfg.Pricing.Region, fallbackShipping),
		client.NewCouponClient(cfg.Services.CouponURL),
		catalogClient,
		pricing.NewAdvisor(flexCap),
	)
	checkoutService := service.NewCheckoutService(
		cartService,
		pricingService,
		client.NewOrderClient(cfg.Services.OrderURL),
		client.NewPaymentClient(cfg.Services.PaymentGatewayURL),
		cfg.Services.ReturnURL,
		cfg.Pricing.Currency,
	)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing controllers").Logger()
	logger.Info().Msg("initializing controllers")
	controller.AttachCartController(router, cartService, catalogClient)
	controller.AttachPricingController(router, pricingService)
	controller.AttachCheckoutController(router, checkoutService)
	logger.Info().Msg("initialized controllers")

	logger = logger.With().Str(log.KeyProcess, "starting quote refresher").Logger()
	logger.Info().Msg("starting quote refresher")
	refresher := service.NewQuoteRefresher(
		pricingService,
		cache,
		time.Duration(cfg.Pricing.DebounceMillis)*time.Millisecond,
	)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go refresher.StartWorker(logger.WithContext(c), &wg)
	logger.Info().Msg("started quote refresher")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	err = httpServer.Shutdown(c)
	if err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	wg.Wait()
	logger.Info().Msg("shutdown http server")
}
