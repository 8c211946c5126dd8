package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/adiwardana/commerce/cart/pkg/entry"
)

var ErrNoLastOrder = errors.New("no last order id for session")

// Store is the durable system of record for a session's cart. Every
// cart mutation is written through before the operation is considered
// complete, so a reload reconstructs the exact prior cart. The last
// order id lives under its own key and is used solely to correlate a
// payment-redirect return when the URL parameter is missing.
type Store interface {
	Load(c context.Context, sessionID string) (entry.Cart, error)
	Save(c context.Context, sessionID string, cart entry.Cart) error
	Clear(c context.Context, sessionID string) error
	SaveLastOrderID(c context.Context, sessionID string, orderID uuid.UUID) error
	LastOrderID(c context.Context, sessionID string) (uuid.UUID, error)
}
