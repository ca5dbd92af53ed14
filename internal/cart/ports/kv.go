package ports

import "context"

// KV is the durable key-value storage the cart persists through. Get
// reports absence via the boolean; malformed stored values are the
// caller's problem and are treated as absent.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
