package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dejobratic/storefront/internal/cart/metrics"
	"github.com/dejobratic/storefront/internal/cart/ports"
	"github.com/dejobratic/storefront/internal/events"
)

// Manager hands out one Store per cart ID. Stores are constructed on first
// use, rehydrated from durable storage, and cached for the life of the
// process.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	kv      ports.KV
	bus     events.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewManager wires the dependencies shared by all cart stores.
func NewManager(kv ports.KV, bus events.Bus, logger *slog.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		kv:      kv,
		bus:     bus,
		logger:  logger,
		metrics: m,
	}
}

// Store returns the cart store for the given ID, creating it on first use.
func (m *Manager) Store(ctx context.Context, id string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[id]; ok {
		return store
	}

	store := NewStore(ctx, id, m.kv, m.bus, m.logger, m.metrics)
	m.stores[id] = store
	return store
}
