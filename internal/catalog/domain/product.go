package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rating aggregates customer review data for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product represents a catalog item available for purchase. Products are
// sourced externally and treated as immutable once fetched.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Valid reports whether the product satisfies the catalog contract:
// a positive stable identifier, a non-empty title and a non-negative price.
func (p Product) Valid() bool {
	if p.ID <= 0 {
		return false
	}
	if strings.TrimSpace(p.Title) == "" {
		return false
	}
	return !p.Price.IsNegative()
}

// Normalize filters out malformed entries from an externally sourced list.
// A nil or empty input yields an empty slice, never an error.
func Normalize(products []Product) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Valid() {
			result = append(result, p)
		}
	}
	return result
}

// Dedupe removes duplicate products by ID, keeping the first occurrence
// and preserving order.
func Dedupe(products []Product) []Product {
	seen := make(map[int]struct{}, len(products))
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		result = append(result, p)
	}
	return result
}
