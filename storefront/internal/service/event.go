package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/internal/constants"
	"github.com/adiwardana/commerce/internal/log"
)

type EventType string

const (
	EventAdded           EventType = "added"
	EventQuantityUpdated EventType = "quantity-updated"
	EventRemoved         EventType = "removed"
	EventCleared         EventType = "cleared"
)

// Event is the user-facing cart notification plus the change marker the
// pricing refresher keys its debounce on.
type Event struct {
	SessionID   string    `json:"session_id"`
	Type        EventType `json:"type"`
	EntryName   string    `json:"entry_name"`
	Seq         uint64    `json:"seq"`
	ContentHash uint64    `json:"content_hash"`
}

type EventPublisher interface {
	Publish(c context.Context, event Event) error
}

type RedisPublisher struct {
	cache *redis.Client
}

func NewRedisPublisher(cache *redis.Client) *RedisPublisher {
	return &RedisPublisher{cache: cache}
}

func (p *RedisPublisher) Publish(c context.Context, event Event) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisPublisher Publish").
		Str(log.KeySessionID, event.SessionID).
		Str(log.KeyCartEvent, string(event.Type)).
		Logger()

	eventJson, err := json.Marshal(event)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart event with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = p.cache.Publish(c, constants.ChannelCartEvents, eventJson).Err()
	if err != nil {
		err = fmt.Errorf("failed publishing cart event with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	return nil
}

// NopPublisher drops events; used where no notification surface exists.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
