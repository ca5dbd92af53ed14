package source

import (
	"context"
	"sync"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
)

// DefaultCacheTTL is the catalog revalidation window.
const DefaultCacheTTL = 5 * time.Minute

// Cached wraps a source with a TTL cache so repeated catalog reads do not
// hit the remote API on every request.
type Cached struct {
	inner ports.Source
	ttl   time.Duration
	now   func() time.Time

	mu              sync.Mutex
	products        []domain.Product
	productsFetched time.Time
	categories      []string
	categoriesAt    time.Time
}

// CacheOption configures a Cached source.
type CacheOption func(*Cached)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cached) {
		c.now = now
	}
}

// NewCached wraps a source with a TTL cache. A non-positive TTL disables
// caching entirely.
func NewCached(inner ports.Source, ttl time.Duration, opts ...CacheOption) *Cached {
	c := &Cached{inner: inner, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Products(ctx context.Context) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl > 0 && c.products != nil && c.now().Sub(c.productsFetched) < c.ttl {
		return copyProducts(c.products), nil
	}

	products, err := c.inner.Products(ctx)
	if err != nil {
		return nil, err
	}

	c.products = products
	c.productsFetched = c.now()
	return copyProducts(products), nil
}

// Product serves from the cached product list when it is fresh and holds
// the ID; anything else goes to the inner source. Single-product responses
// are not cached, the list is the unit of revalidation.
func (c *Cached) Product(ctx context.Context, id int) (domain.Product, error) {
	c.mu.Lock()
	if c.ttl > 0 && c.products != nil && c.now().Sub(c.productsFetched) < c.ttl {
		for _, p := range c.products {
			if p.ID == id {
				c.mu.Unlock()
				return p, nil
			}
		}
	}
	c.mu.Unlock()

	return c.inner.Product(ctx, id)
}

func (c *Cached) Categories(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl > 0 && c.categories != nil && c.now().Sub(c.categoriesAt) < c.ttl {
		return copyStrings(c.categories), nil
	}

	categories, err := c.inner.Categories(ctx)
	if err != nil {
		return nil, err
	}

	c.categories = categories
	c.categoriesAt = c.now()
	return copyStrings(categories), nil
}

func copyProducts(products []domain.Product) []domain.Product {
	result := make([]domain.Product, len(products))
	copy(result, products)
	return result
}

func copyStrings(values []string) []string {
	result := make([]string, len(values))
	copy(result, values)
	return result
}
