package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
)

const (
	keyCarts     = "carts:%s"
	keyLastOrder = "carts:%s:last-order"
)

type RedisStore struct {
	cache *redis.Client
}

func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

func (s *RedisStore) Load(c context.Context, sessionID string) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "RedisStore Load")
	defer span.End()

	cacheKey := fmt.Sprintf(keyCarts, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Load").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	jsonCart, err := s.cache.JSONGet(c, cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entry.Cart{}, nil
		}
		err = fmt.Errorf("failed loading cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}
	if jsonCart == "" {
		return entry.Cart{}, nil
	}

	cart := entry.Cart{}
	err = json.Unmarshal([]byte(jsonCart), &cart)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	return cart, nil
}

func (s *RedisStore) Save(c context.Context, sessionID string, cart entry.Cart) error {
	c, span := otel.Tracer.Start(c, "RedisStore Save")
	defer span.End()

	cacheKey := fmt.Sprintf(keyCarts, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Save").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	err := s.cache.JSONSet(c, cacheKey, "$", cart).Err()
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	return nil
}

func (s *RedisStore) Clear(c context.Context, sessionID string) error {
	c, span := otel.Tracer.Start(c, "RedisStore Clear")
	defer span.End()

	cacheKey := fmt.Sprintf(keyCarts, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Clear").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	err := s.cache.JSONDel(c, cacheKey, "$").Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	return nil
}

func (s *RedisStore) SaveLastOrderID(
	c context.Context,
	sessionID string,
	orderID uuid.UUID,
) error {
	c, span := otel.Tracer.Start(c, "RedisStore SaveLastOrderID")
	defer span.End()

	cacheKey := fmt.Sprintf(keyLastOrder, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore SaveLastOrderID").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	err := s.cache.Set(c, cacheKey, orderID.String(), 0).Err()
	if err != nil {
		err = fmt.Errorf("failed saving last order id with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	return nil
}

func (s *RedisStore) LastOrderID(c context.Context, sessionID string) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "RedisStore LastOrderID")
	defer span.End()

	cacheKey := fmt.Sprintf(keyLastOrder, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore LastOrderID").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	raw, err := s.cache.Get(c, cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNoLastOrder
		}
		err = fmt.Errorf("failed loading last order id with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}

	orderID, err := uuid.Parse(raw)
	if err != nil {
		err = fmt.Errorf("failed parsing last order id with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}

	return orderID, nil
}
