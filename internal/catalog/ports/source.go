// Package ports defines the catalog's consumer-side contracts.
package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

// ErrNotFound is returned when the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Source supplies the raw product catalog consumed by the storefront.
// Implementations are responsible for transport errors, retries and
// fallback datasets; callers always receive already-resolved values.
// An empty slice is a valid result from the list calls.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}
