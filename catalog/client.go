package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
)

const snapshotTTL = 5 * time.Minute

// Client fetches products and bundle definitions from the catalog
// service. The product snapshot is cached with a short TTL because the
// shipping advisor and bundle resolver only need read-mostly data.
type Client struct {
	baseURL string
	client  *http.Client

	mu        sync.Mutex
	snapshot  Snapshot
	fetchedAt time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (cl *Client) Snapshot(c context.Context) (Snapshot, error) {
	c, span := otel.Tracer.Start(c, "CatalogClient Snapshot")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogClient Snapshot").
		Logger()

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if time.Since(cl.fetchedAt) < snapshotTTL && len(cl.snapshot.Products) > 0 {
		return cl.snapshot, nil
	}

	logger = logger.With().Str(log.KeyProcess, "fetching products").Logger()
	logger.Info().Msg("fetching products")
	req, err := http.NewRequestWithContext(c, http.MethodGet, cl.baseURL+"/products", nil)
	if err != nil {
		err = fmt.Errorf("failed creating catalog request with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Snapshot{}, err
	}

	resp, err := cl.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed fetching products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed fetching products with status=%d", resp.StatusCode)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Snapshot{}, err
	}

	snapshot := Snapshot{}
	err = json.NewDecoder(resp.Body).Decode(&snapshot)
	if err != nil {
		err = fmt.Errorf("failed decoding products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Snapshot{}, err
	}
	logger.Info().Msg("fetched products")

	cl.snapshot = snapshot
	cl.fetchedAt = time.Now()
	return snapshot, nil
}

func (cl *Client) FindBundle(c context.Context, bundleID uuid.UUID) (BundleDefinition, error) {
	c, span := otel.Tracer.Start(c, "CatalogClient FindBundle")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogClient FindBundle").
		Str(log.KeyBundleID, bundleID.String()).
		Str(log.KeyProcess, "fetching bundle").
		Logger()

	logger.Info().Msg("fetching bundle")
	url := fmt.Sprintf("%s/bundles/%s", cl.baseURL, bundleID)
	req, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("failed creating bundle request with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return BundleDefinition{}, err
	}

	resp, err := cl.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed fetching bundle with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return BundleDefinition{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed fetching bundle with status=%d", resp.StatusCode)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return BundleDefinition{}, err
	}

	def := BundleDefinition{}
	err = json.NewDecoder(resp.Body).Decode(&def)
	if err != nil {
		err = fmt.Errorf("failed decoding bundle with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return BundleDefinition{}, err
	}
	logger.Info().Msg("fetched bundle")

	return def, nil
}
