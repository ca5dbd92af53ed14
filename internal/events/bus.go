// Package events defines the contract for publishing cart lifecycle
// events. Only a logging no-op implementation ships today; a real broker
// can be wired in behind the same interface.
package events

import (
	"context"
	"log/slog"
)

// Bus publishes cart lifecycle events.
type Bus interface {
	PublishCartUpdated(ctx context.Context, cartID, operation string) error
	PublishCartCleared(ctx context.Context, cartID string) error
	PublishCheckoutStarted(ctx context.Context, cartID string, totalItems int) error
}

// NoopBus logs events without sending them anywhere.
type NoopBus struct{}

// NewNoopBus returns a new no-op event publisher.
func NewNoopBus() *NoopBus {
	return &NoopBus{}
}

func (n *NoopBus) PublishCartUpdated(_ context.Context, cartID, operation string) error {
	slog.Debug("event::cart_updated", "cart_id", cartID, "operation", operation)
	return nil
}

func (n *NoopBus) PublishCartCleared(_ context.Context, cartID string) error {
	slog.Debug("event::cart_cleared", "cart_id", cartID)
	return nil
}

func (n *NoopBus) PublishCheckoutStarted(_ context.Context, cartID string, totalItems int) error {
	slog.Debug("event::checkout_started", "cart_id", cartID, "total_items", totalItems)
	return nil
}
