package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/adiwardana/commerce/cart/pkg/entry"
)

// MemoryStore keeps carts in process memory. It backs tests and proves
// the persistence mechanism is swappable behind Store.
type MemoryStore struct {
	mu         sync.RWMutex
	carts      map[string]entry.Cart
	lastOrders map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:      map[string]entry.Cart{},
		lastOrders: map[string]uuid.UUID{},
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (entry.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return entry.Cart{}, nil
	}
	return cart.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, cart entry.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = cart.Clone()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func (s *MemoryStore) SaveLastOrderID(
	_ context.Context,
	sessionID string,
	orderID uuid.UUID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOrders[sessionID] = orderID
	return nil
}

func (s *MemoryStore) LastOrderID(_ context.Context, sessionID string) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orderID, ok := s.lastOrders[sessionID]
	if !ok {
		return uuid.Nil, ErrNoLastOrder
	}
	return orderID, nil
}
