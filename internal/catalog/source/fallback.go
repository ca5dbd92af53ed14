package source

import (
	"context"
	"log/slog"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/shopspring/decimal"
)

// Static serves a fixed dataset. It backs the storefront when the remote
// catalog is unreachable or returns garbage.
type Static struct {
	products   []domain.Product
	categories []string
}

// NewStatic builds a static source over the given data.
func NewStatic(products []domain.Product, categories []string) *Static {
	return &Static{products: products, categories: categories}
}

// NewFallbackDataset returns the built-in demo catalog.
func NewFallbackDataset() *Static {
	return NewStatic(fallbackProducts(), fallbackCategories())
}

func (s *Static) Products(_ context.Context) ([]domain.Product, error) {
	result := make([]domain.Product, len(s.products))
	copy(result, s.products)
	return result, nil
}

func (s *Static) Product(_ context.Context, id int) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ports.ErrNotFound
}

func (s *Static) Categories(_ context.Context) ([]string, error) {
	result := make([]string, len(s.categories))
	copy(result, s.categories)
	return result, nil
}

// WithFallback wraps a primary source so that any primary failure degrades
// to the secondary instead of surfacing an error.
type WithFallback struct {
	primary   ports.Source
	secondary ports.Source
	logger    *slog.Logger
}

// NewWithFallback composes a primary source with a fallback.
func NewWithFallback(primary, secondary ports.Source, logger *slog.Logger) *WithFallback {
	return &WithFallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *WithFallback) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := f.primary.Products(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "catalog source failed, using fallback dataset", "error", err)
		return f.secondary.Products(ctx)
	}
	return products, nil
}

// Product degrades to the secondary on any primary failure, not-found
// included; products outside the fallback dataset stay not found.
func (f *WithFallback) Product(ctx context.Context, id int) (domain.Product, error) {
	product, err := f.primary.Product(ctx, id)
	if err != nil {
		if fallback, fbErr := f.secondary.Product(ctx, id); fbErr == nil {
			f.logger.WarnContext(ctx, "product source failed, serving fallback product",
				"product_id", id, "error", err)
			return fallback, nil
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (f *WithFallback) Categories(ctx context.Context) ([]string, error) {
	categories, err := f.primary.Categories(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "category source failed, using fallback dataset", "error", err)
		return f.secondary.Categories(ctx)
	}
	return categories, nil
}

func fallbackCategories() []string {
	return []string{"electronics", "accessories", "clothing", "home"}
}

func fallbackProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          1,
			Title:       "Wireless Bluetooth Headphones",
			Price:       decimal.NewFromFloat(89.99),
			Description: "High-quality wireless headphones with noise cancellation and 20-hour battery life.",
			Category:    "electronics",
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=400&fit=crop",
			Rating:      domain.Rating{Rate: 4.5, Count: 250},
		},
		{
			ID:          2,
			Title:       "Smartphone Case",
			Price:       decimal.NewFromFloat(24.99),
			Description: "Durable protective case with shock absorption and wireless charging compatibility.",
			Category:    "accessories",
			Image:       "https://images.unsplash.com/photo-1556656793-08538906a9f8?w=400&h=400&fit=crop",
			Rating:      domain.Rating{Rate: 4.2, Count: 180},
		},
		{
			ID:          3,
			Title:       "Cotton T-Shirt",
			Price:       decimal.NewFromFloat(19.99),
			Description: "Comfortable 100% cotton t-shirt available in multiple colors.",
			Category:    "clothing",
			Image:       "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=400&fit=crop",
			Rating:      domain.Rating{Rate: 4.0, Count: 95},
		},
		{
			ID:          4,
			Title:       "Leather Wallet",
			Price:       decimal.NewFromFloat(49.99),
			Description: "Genuine leather wallet with multiple card slots and bill compartment.",
			Category:    "accessories",
			Image:       "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400&h=400&fit=crop",
			Rating:      domain.Rating{Rate: 4.7, Count: 320},
		},
		{
			ID:          5,
			Title:       "Coffee Mug",
			Price:       decimal.NewFromFloat(12.99),
			Description: "Ceramic coffee mug with unique design, microwave and dishwasher safe.",
			Category:    "home",
			Image:       "https://images.unsplash.com/photo-1514228742587-6b1558fcf93a?w=400&h=400&fit=crop",
			Rating:      domain.Rating{Rate: 4.3, Count: 75},
		},
	}
}
