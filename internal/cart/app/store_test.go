package app_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dejobratic/storefront/internal/cart/app"
	"github.com/dejobratic/storefront/internal/cart/metrics"
	catalog "github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/events"
	"github.com/dejobratic/storefront/internal/storage/memory"
	"github.com/shopspring/decimal"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type failingKV struct {
	getErr error
	setErr error
}

func (f *failingKV) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, f.getErr
}

func (f *failingKV) Set(_ context.Context, _, _ string) error {
	return f.setErr
}

type recordingBus struct {
	events.NoopBus
	updated  []string
	cleared  int
	checkout int
}

func (b *recordingBus) PublishCartUpdated(_ context.Context, _ string, operation string) error {
	b.updated = append(b.updated, operation)
	return nil
}

func (b *recordingBus) PublishCartCleared(_ context.Context, _ string) error {
	b.cleared++
	return nil
}

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func product(id int, price float64) catalog.Product {
	return catalog.Product{ID: id, Title: "Product", Price: decimal.NewFromFloat(price)}
}

func TestStorePersistence(t *testing.T) {
	t.Run("round-trips the item list through storage", func(t *testing.T) {
		ctx := context.Background()
		kv := memory.NewKV()
		bus := events.NewNoopBus()
		m := newTestMetrics(t)

		store := app.NewStore(ctx, "abc", kv, bus, testLogger(), m)
		store.AddItem(ctx, product(1, 9.99))
		store.AddItem(ctx, product(1, 9.99))
		store.AddItem(ctx, product(2, 24.99))
		before := store.Cart()

		// A fresh store over the same key must observe the same cart.
		reloaded := app.NewStore(ctx, "abc", kv, bus, testLogger(), m).Cart()

		if len(reloaded.Items) != len(before.Items) {
			t.Fatalf("expected %d items after reload, got %d", len(before.Items), len(reloaded.Items))
		}
		for i := range before.Items {
			if reloaded.Items[i].ID != before.Items[i].ID ||
				reloaded.Items[i].Quantity != before.Items[i].Quantity {
				t.Errorf("item %d differs after reload: %+v vs %+v", i, reloaded.Items[i], before.Items[i])
			}
		}
		if reloaded.TotalItems != before.TotalItems {
			t.Errorf("TotalItems = %d, want %d", reloaded.TotalItems, before.TotalItems)
		}
		if !reloaded.TotalPrice.Equal(before.TotalPrice) {
			t.Errorf("TotalPrice = %s, want %s", reloaded.TotalPrice, before.TotalPrice)
		}
	})

	t.Run("persists the empty state on clear", func(t *testing.T) {
		ctx := context.Background()
		kv := memory.NewKV()
		bus := events.NewNoopBus()
		m := newTestMetrics(t)

		store := app.NewStore(ctx, "abc", kv, bus, testLogger(), m)
		store.AddItem(ctx, product(1, 9.99))
		store.Clear(ctx)

		reloaded := app.NewStore(ctx, "abc", kv, bus, testLogger(), m).Cart()
		if len(reloaded.Items) != 0 {
			t.Errorf("expected empty cart after clear+reload, got %d items", len(reloaded.Items))
		}
	})

	t.Run("missing stored data yields an empty cart", func(t *testing.T) {
		ctx := context.Background()
		store := app.NewStore(ctx, "never-seen", memory.NewKV(), events.NewNoopBus(), testLogger(), newTestMetrics(t))

		cart := store.Cart()
		if len(cart.Items) != 0 || cart.TotalItems != 0 {
			t.Errorf("expected empty cart, got %+v", cart)
		}
	})

	t.Run("malformed stored data yields an empty cart, never an error", func(t *testing.T) {
		ctx := context.Background()
		kv := memory.NewKV()
		if err := kv.Set(ctx, "cart:abc", "{not json"); err != nil {
			t.Fatalf("seeding storage failed: %v", err)
		}

		store := app.NewStore(ctx, "abc", kv, events.NewNoopBus(), testLogger(), newTestMetrics(t))
		cart := store.Cart()
		if len(cart.Items) != 0 {
			t.Errorf("expected empty cart over malformed storage, got %d items", len(cart.Items))
		}
	})

	t.Run("storage failures are swallowed and memory stays authoritative", func(t *testing.T) {
		ctx := context.Background()
		kv := &failingKV{
			getErr: errors.New("read failed"),
			setErr: errors.New("write failed"),
		}

		store := app.NewStore(ctx, "abc", kv, events.NewNoopBus(), testLogger(), newTestMetrics(t))
		cart := store.AddItem(ctx, product(1, 9.99))

		if cart.TotalItems != 1 {
			t.Errorf("expected in-memory cart to hold the item, got %+v", cart)
		}
	})
}

func TestStoreReload(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	bus := events.NewNoopBus()
	m := newTestMetrics(t)

	store := app.NewStore(ctx, "abc", kv, bus, testLogger(), m)
	store.AddItem(ctx, product(1, 9.99))

	// Overwrite storage behind the store's back, then reload.
	other := app.NewStore(ctx, "abc", kv, bus, testLogger(), m)
	other.AddItem(ctx, product(2, 5))

	cart := store.ReloadFromStorage(ctx)
	if _, ok := cart.Find(2); !ok {
		t.Error("expected reload to pick up product 2 from storage")
	}
}

func TestStoreEvents(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}

	store := app.NewStore(ctx, "abc", memory.NewKV(), bus, testLogger(), newTestMetrics(t))
	store.AddItem(ctx, product(1, 9.99))
	store.SetQuantity(ctx, 1, 3)
	store.Clear(ctx)

	if len(bus.updated) != 3 {
		t.Fatalf("expected 3 cart updated events, got %d: %v", len(bus.updated), bus.updated)
	}
	if bus.updated[0] != "add_item" || bus.updated[1] != "set_quantity" || bus.updated[2] != "clear" {
		t.Errorf("unexpected event operations: %v", bus.updated)
	}
	if bus.cleared != 1 {
		t.Errorf("expected 1 cart cleared event, got %d", bus.cleared)
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	manager := app.NewManager(memory.NewKV(), events.NewNoopBus(), testLogger(), newTestMetrics(t))

	t.Run("returns the same store for the same id", func(t *testing.T) {
		a := manager.Store(ctx, "one")
		b := manager.Store(ctx, "one")
		if a != b {
			t.Error("expected the same store instance for one id")
		}
	})

	t.Run("isolates carts across sessions", func(t *testing.T) {
		a := manager.Store(ctx, "one")
		b := manager.Store(ctx, "two")

		a.AddItem(ctx, product(1, 10))

		if b.Cart().TotalItems != 0 {
			t.Error("expected session two's cart to stay empty")
		}
	})
}
