// Package app implements the cart store: the single source of truth for a
// session's cart. Every mutation funnels through a named operation that
// applies the domain transition, persists the result and publishes an
// event. In-memory state stays authoritative when storage misbehaves.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/cart/metrics"
	"github.com/dejobratic/storefront/internal/cart/ports"
	catalog "github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/events"
	"github.com/dejobratic/storefront/internal/telemetry"
)

// Store owns one cart, identified by its session-scoped cart ID.
type Store struct {
	mu      sync.Mutex
	cart    cartdomain.Cart
	id      string
	kv      ports.KV
	bus     events.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewStore constructs a cart store and rehydrates it from durable storage.
// Missing or malformed stored data yields an empty cart, never an error.
func NewStore(
	ctx context.Context,
	id string,
	kv ports.KV,
	bus events.Bus,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Store {
	s := &Store{
		cart:    cartdomain.Empty(),
		id:      id,
		kv:      kv,
		bus:     bus,
		logger:  logger,
		metrics: m,
	}
	s.ReloadFromStorage(ctx)
	return s
}

// ID returns the cart identifier.
func (s *Store) ID() string {
	return s.id
}

// Cart returns a snapshot of the current state.
func (s *Store) Cart() cartdomain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// AddItem adds a product to the cart, incrementing quantity when the
// product is already present.
func (s *Store) AddItem(ctx context.Context, p catalog.Product) cartdomain.Cart {
	return s.mutate(ctx, "add_item", func(c cartdomain.Cart) cartdomain.Cart {
		return c.Add(p)
	})
}

// RemoveItem deletes a line item. Absent IDs are a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int) cartdomain.Cart {
	return s.mutate(ctx, "remove_item", func(c cartdomain.Cart) cartdomain.Cart {
		return c.Remove(productID)
	})
}

// SetQuantity sets an item's quantity to an absolute value; non-positive
// values remove the item.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity int) cartdomain.Cart {
	return s.mutate(ctx, "set_quantity", func(c cartdomain.Cart) cartdomain.Cart {
		return c.SetQuantity(productID, quantity)
	})
}

// IncrementQuantity raises an item's quantity by 1.
func (s *Store) IncrementQuantity(ctx context.Context, productID int) cartdomain.Cart {
	return s.mutate(ctx, "increment_quantity", func(c cartdomain.Cart) cartdomain.Cart {
		return c.Increment(productID)
	})
}

// DecrementQuantity lowers an item's quantity by 1, removing the item at
// quantity 1.
func (s *Store) DecrementQuantity(ctx context.Context, productID int) cartdomain.Cart {
	return s.mutate(ctx, "decrement_quantity", func(c cartdomain.Cart) cartdomain.Cart {
		return c.Decrement(productID)
	})
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) cartdomain.Cart {
	cart := s.mutate(ctx, "clear", func(c cartdomain.Cart) cartdomain.Cart {
		return c.Clear()
	})
	if err := s.bus.PublishCartCleared(ctx, s.id); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart cleared event", "cart_id", s.id, "error", err)
	}
	return cart
}

// ReloadFromStorage replaces the in-memory cart with whatever durable
// storage currently holds.
func (s *Store) ReloadFromStorage(ctx context.Context) cartdomain.Cart {
	ctx, span := telemetry.StartSpan(ctx, "CartStore.ReloadFromStorage")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok, err := s.kv.Get(ctx, s.storageKey())
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read cart from storage, keeping in-memory state",
			"cart_id", s.id, "error", err)
		return s.cart
	}
	if !ok {
		s.cart = cartdomain.Empty()
		return s.cart
	}

	var items []cartdomain.LineItem
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		s.logger.WarnContext(ctx, "malformed cart in storage, starting empty",
			"cart_id", s.id, "error", err)
		s.cart = cartdomain.Empty()
		return s.cart
	}

	s.cart = cartdomain.FromItems(items)
	return s.cart
}

func (s *Store) mutate(ctx context.Context, operation string, fn func(cartdomain.Cart) cartdomain.Cart) cartdomain.Cart {
	ctx, span := telemetry.StartSpan(ctx, fmt.Sprintf("CartStore.%s", operation))
	defer span.End()

	s.mu.Lock()
	s.cart = fn(s.cart)
	cart := s.cart
	s.persist(ctx, cart)
	s.mu.Unlock()

	s.metrics.RecordOperation(ctx, operation)

	if err := s.bus.PublishCartUpdated(ctx, s.id, operation); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart updated event",
			"cart_id", s.id, "operation", operation, "error", err)
	}

	return cart
}

// persist writes the full item list before the mutation returns, so
// storage and memory never observably diverge. Write failures are logged
// and swallowed: the in-memory cart stays authoritative for the session.
func (s *Store) persist(ctx context.Context, cart cartdomain.Cart) {
	payload, err := json.Marshal(cart.Items)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to serialize cart", "cart_id", s.id, "error", err)
		s.metrics.RecordPersistFailure(ctx)
		return
	}

	if err := s.kv.Set(ctx, s.storageKey(), string(payload)); err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart", "cart_id", s.id, "error", err)
		s.metrics.RecordPersistFailure(ctx)
	}
}

func (s *Store) storageKey() string {
	return "cart:" + s.id
}
