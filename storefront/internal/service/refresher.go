package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/internal/constants"
	"github.com/adiwardana/commerce/internal/log"
)

// QuoteRefresher coalesces bursts of cart events and recomputes quotes
// against the settled cart only. A rapid run of quantity clicks costs
// one bundle-discount and one shipping round-trip, not one per click.
type QuoteRefresher struct {
	svc      *PricingService
	cache    *redis.Client
	interval time.Duration
}

func NewQuoteRefresher(
	svc *PricingService,
	cache *redis.Client,
	interval time.Duration,
) *QuoteRefresher {
	return &QuoteRefresher{svc: svc, cache: cache, interval: interval}
}

// pendingRefresh tracks the newest event observed for a session since
// the last tick. Only the highest sequence matters; intermediate cart
// states are superseded.
type pendingRefresh struct {
	seq  uint64
	hash uint64
}

func (r *QuoteRefresher) StartWorker(c context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(c).
		With().
		Reset().
		Str(log.KeyTag, "QuoteRefresher StartWorker").
		Str(log.KeyProcess, "starting worker").
		Logger()

	logger.Info().Msg("subscribing to cart events")
	pubsub := r.cache.Subscribe(c, constants.ChannelCartEvents)
	defer pubsub.Close()
	events := pubsub.Channel()
	logger.Info().Msg("subscribed to cart events")

	tick := time.Tick(r.interval)
	pending := map[string]pendingRefresh{}
	applied := map[string]uint64{}

	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopping worker")
			return
		case <-tick:
			if len(pending) == 0 {
				continue
			}
			requestID := uuid.NewString()
			tickLogger := logger.With().Str(log.KeyRequestID, requestID).Logger()
			tickCtx := log.AttachRequestIDToContext(tickLogger.WithContext(c), requestID)
			for sessionID, p := range pending {
				delete(pending, sessionID)
				// identical content hash means item identity and
				// quantities did not actually change
				if applied[sessionID] == p.hash {
					continue
				}
				err := r.svc.RefreshSession(tickCtx, sessionID, p.seq)
				if err != nil {
					err = fmt.Errorf("failed refreshing quote with error=%w", err)
					tickLogger.Error().
						Err(err).
						Str(log.KeySessionID, sessionID).
						Msg(err.Error())
					continue
				}
				applied[sessionID] = p.hash
			}
		case msg, ok := <-events:
			if !ok {
				logger.Info().Msg("cart event channel closed, stopping worker")
				return
			}
			event := Event{}
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				err = fmt.Errorf("failed unmarshaling cart event with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				continue
			}
			if current, exists := pending[event.SessionID]; !exists || event.Seq > current.seq {
				pending[event.SessionID] = pendingRefresh{
					seq:  event.Seq,
					hash: event.ContentHash,
				}
			}
		}
	}
}
