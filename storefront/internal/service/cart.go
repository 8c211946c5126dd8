package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/storefront/internal/store"
	"github.com/adiwardana/commerce/cart/pkg/entry"
	commonErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
	"github.com/adiwardana/commerce/internal/otel"
)

// CartService owns all cart mutation. Mutations for one session are
// serialized by a per-session lock, every write goes through the
// durable store before the call returns, and everything downstream
// receives value snapshots only.
type CartService struct {
	store     store.Store
	publisher EventPublisher
	locks     sync.Map
	seqs      sync.Map
}

func NewCartService(store store.Store, publisher EventPublisher) *CartService {
	return &CartService{store: store, publisher: publisher}
}

func (s *CartService) sessionLock(sessionID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *CartService) nextSeq(sessionID string) uint64 {
	seq, _ := s.seqs.LoadOrStore(sessionID, &atomic.Uint64{})
	return seq.(*atomic.Uint64).Add(1)
}

func (s *CartService) publish(
	c context.Context,
	sessionID string,
	eventType EventType,
	entryName string,
	cart entry.Cart,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService publish").
		Str(log.KeyCartEvent, string(eventType)).
		Logger()

	event := Event{
		SessionID:   sessionID,
		Type:        eventType,
		EntryName:   entryName,
		Seq:         s.nextSeq(sessionID),
		ContentHash: cart.ContentHash(),
	}
	err := s.publisher.Publish(c, event)
	if err != nil {
		err = fmt.Errorf("failed publishing cart event with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}
}

func (s *CartService) AddItem(
	c context.Context,
	sessionID string,
	item entry.SimpleItem,
) (entry.Cart, EventType, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyVariantKey, item.Key.String()).
		Int32(log.KeyQuantity, item.Quantity).
		Logger()

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	cart, err := s.store.Load(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, "", err
	}
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "merging item").Logger()
	eventType := EventAdded
	merged := false
	for i, e := range cart.Entries {
		if e.Kind == entry.KindSimple && e.Item.Key == item.Key {
			quantity := e.Item.Quantity + item.Quantity
			if quantity < 0 {
				quantity = 0
			}
			cart.Entries[i].Item.Quantity = quantity
			eventType = EventQuantityUpdated
			merged = true
			logger.Info().
				Int32(log.KeyQuantity, quantity).
				Msg("merged item quantity")
			break
		}
	}
	if !merged {
		cart.Entries = append(cart.Entries, entry.NewSimple(item))
		logger.Info().Msg("inserted new item")
	}

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Info().Msg("saving cart")
	err = s.store.Save(c, sessionID, cart)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, "", err
	}
	logger.Info().Msg("saved cart")

	s.publish(c, sessionID, eventType, item.Name, cart)

	return cart.Clone(), eventType, nil
}

func (s *CartService) AddBundle(
	c context.Context,
	sessionID string,
	bundle entry.BundleItem,
) (entry.Cart, EventType, error) {
	c, span := otel.Tracer.Start(c, "CartService AddBundle")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddBundle").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyBundleID, bundle.BundleID.String()).
		Logger()

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	cart, err := s.store.Load(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, "", err
	}
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "merging bundle").Logger()
	eventType := EventAdded
	merged := false
	for i, e := range cart.Entries {
		if e.Kind == entry.KindBundle && e.Bundle.BundleID == bundle.BundleID {
			// repeated adds increment quantity, never duplicate the entry
			cart.Entries[i].Bundle.Quantity++
			eventType = EventQuantityUpdated
			merged = true
			logger.Info().
				Int32(log.KeyQuantity, cart.Entries[i].Bundle.Quantity).
				Msg("merged bundle quantity")
			break
		}
	}
	if !merged {
		bundle.Quantity = 1
		cart.Entries = append(cart.Entries, entry.NewBundle(bundle))
		logger.Info().Msg("inserted new bundle")
	}

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Info().Msg("saving cart")
	err = s.store.Save(c, sessionID, cart)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, "", err
	}
	logger.Info().Msg("saved cart")

	s.publish(c, sessionID, eventType, bundle.Name, cart)

	return cart.Clone(), eventType, nil
}

func (s *CartService) RemoveItem(
	c context.Context,
	sessionID string,
	key entry.VariantKey,
) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyVariantKey, key.String()).
		Logger()

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	c = logger.WithContext(c)
	return s.removeLocked(c, sessionID, func(e entry.Entry) bool {
		return e.Kind == entry.KindSimple && e.Item.Key == key
	})
}

func (s *CartService) RemoveBundle(
	c context.Context,
	sessionID string,
	bundleID uuid.UUID,
) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveBundle")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveBundle").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyBundleID, bundleID.String()).
		Logger()

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	c = logger.WithContext(c)
	return s.removeLocked(c, sessionID, func(e entry.Entry) bool {
		return e.Kind == entry.KindBundle && e.Bundle.BundleID == bundleID
	})
}

// removeLocked deletes the first entry matching the predicate. A bundle
// entry disappears whole, sub-items included, in this one operation.
func (s *CartService) removeLocked(
	c context.Context,
	sessionID string,
	match func(entry.Entry) bool,
) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService removeLocked")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "removing entry").
		Logger()

	cart, err := s.store.Load(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	removedName := ""
	entries := make([]entry.Entry, 0, len(cart.Entries))
	for _, e := range cart.Entries {
		if removedName == "" && match(e) {
			switch e.Kind {
			case entry.KindSimple:
				removedName = e.Item.Name
			case entry.KindBundle:
				removedName = e.Bundle.Name
			}
			continue
		}
		entries = append(entries, e)
	}
	if removedName == "" {
		err = commonErrors.ErrEntryNotFound
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}
	cart.Entries = entries

	err = s.store.Save(c, sessionID, cart)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}
	logger.Info().Msg("removed entry")

	s.publish(c, sessionID, EventRemoved, removedName, cart)

	return cart.Clone(), nil
}

func (s *CartService) SetItemQuantity(
	c context.Context,
	sessionID string,
	key entry.VariantKey,
	quantity int32,
) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SetItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetItemQuantity").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyVariantKey, key.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()
	c = logger.WithContext(c)

	// quantity below one means the shopper wants the line gone
	if quantity < 1 {
		return s.RemoveItem(c, sessionID, key)
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	logger = logger.With().Str(log.KeyProcess, "setting item quantity").Logger()
	cart, err := s.store.Load(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	found := false
	updatedName := ""
	for i, e := range cart.Entries {
		if e.Kind == entry.KindSimple && e.Item.Key == key {
			cart.Entries[i].Item.Quantity = quantity
			updatedName = e.Item.Name
			found = true
			break
		}
	}
	if !found {
		err = commonErrors.ErrEntryNotFound
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	err = s.store.Save(c, sessionID, cart)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}
	logger.Info().Msg("set item quantity")

	s.publish(c, sessionID, EventQuantityUpdated, updatedName, cart)

	return cart.Clone(), nil
}

func (s *CartService) SetBundleQuantity(
	c context.Context,
	sessionID string,
	bundleID uuid.UUID,
	quantity int32,
) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SetBundleQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetBundleQuantity").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyBundleID, bundleID.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()
	c = logger.WithContext(c)

	if quantity < 1 {
		return s.RemoveBundle(c, sessionID, bundleID)
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	logger = logger.With().Str(log.KeyProcess, "setting bundle quantity").Logger()
	cart, err := s.store.Load(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	found := false
	updatedName := ""
	for i, e := range cart.Entries {
		if e.Kind == entry.KindBundle && e.Bundle.BundleID == bundleID {
			cart.Entries[i].Bundle.Quantity = quantity
			updatedName = e.Bundle.Name
			found = true
			break
		}
	}
	if !found {
		err = commonErrors.ErrEntryNotFound
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	err = s.store.Save(c, sessionID, cart)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}
	logger.Info().Msg("set bundle quantity")

	s.publish(c, sessionID, EventQuantityUpdated, updatedName, cart)

	return cart.Clone(), nil
}

func (s *CartService) Clear(c context.Context, sessionID string) error {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	logger.Info().Msg("clearing cart")
	err := s.store.Clear(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")

	s.publish(c, sessionID, EventCleared, "", entry.Cart{})

	return nil
}

// Snapshot returns the cart as of the most recent completed mutation.
// Callers get a value copy and can never reach the stored cart.
func (s *CartService) Snapshot(c context.Context, sessionID string) (entry.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Snapshot")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Snapshot").
		Str(log.KeySessionID, sessionID).
		Logger()

	cart, err := s.store.Load(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return entry.Cart{}, err
	}

	return cart.Clone(), nil
}

// SaveLastOrderID persists the order id used to correlate a payment
// redirect return; exposed here so checkout shares the same durable
// store as the cart.
func (s *CartService) SaveLastOrderID(
	c context.Context,
	sessionID string,
	orderID uuid.UUID,
) error {
	return s.store.SaveLastOrderID(c, sessionID, orderID)
}

func (s *CartService) LastOrderID(c context.Context, sessionID string) (uuid.UUID, error) {
	return s.store.LastOrderID(c, sessionID)
}
