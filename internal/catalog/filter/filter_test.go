package filter_test

import (
	"testing"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/filter"
	"github.com/shopspring/decimal"
)

func product(id int, price float64) domain.Product {
	return domain.Product{ID: id, Title: "Product", Price: decimal.NewFromFloat(price)}
}

func ids(products []domain.Product) []int {
	result := make([]int, len(products))
	for i, p := range products {
		result[i] = p.ID
	}
	return result
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSorting(t *testing.T) {
	products := []domain.Product{
		product(1, 10),
		product(2, 30),
		product(3, 20),
	}

	tests := []struct {
		name string
		sort filter.SortKey
		want []int
	}{
		{name: "price-low sorts ascending", sort: filter.SortPriceLow, want: []int{1, 3, 2}},
		{name: "price-high sorts descending", sort: filter.SortPriceHigh, want: []int{2, 3, 1}},
		{name: "newest sorts by descending id", sort: filter.SortNewest, want: []int{3, 2, 1}},
		{name: "featured preserves original order", sort: filter.SortFeatured, want: []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.ComputeView(products, filter.Params{Sort: tt.sort})
			if got := ids(result.Visible); !equalIDs(got, tt.want) {
				t.Errorf("expected order %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("rating sorts descending", func(t *testing.T) {
		rated := []domain.Product{
			{ID: 1, Title: "A", Price: decimal.Zero, Rating: domain.Rating{Rate: 3.5}},
			{ID: 2, Title: "B", Price: decimal.Zero, Rating: domain.Rating{Rate: 4.8}},
			{ID: 3, Title: "C", Price: decimal.Zero, Rating: domain.Rating{Rate: 4.1}},
		}
		result := filter.ComputeView(rated, filter.Params{Sort: filter.SortRating})
		if got := ids(result.Visible); !equalIDs(got, []int{2, 3, 1}) {
			t.Errorf("expected order [2 3 1], got %v", got)
		}
	})

	t.Run("equal prices keep original order", func(t *testing.T) {
		equal := []domain.Product{product(1, 10), product(2, 10), product(3, 10)}
		result := filter.ComputeView(equal, filter.Params{Sort: filter.SortPriceLow})
		if got := ids(result.Visible); !equalIDs(got, []int{1, 2, 3}) {
			t.Errorf("expected stable order [1 2 3], got %v", got)
		}
	})
}

func TestSearch(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Title: "Wireless Headphones", Description: "Bluetooth audio", Price: decimal.Zero},
		{ID: 2, Title: "Coffee Mug", Description: "Ceramic, dishwasher safe", Price: decimal.Zero},
		{ID: 3, Title: "Phone Case", Description: "Works with wireless charging", Price: decimal.Zero},
	}

	t.Run("matches title and description case-insensitively", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Search: "WIRELESS"})
		if got := ids(result.Visible); !equalIDs(got, []int{1, 3}) {
			t.Errorf("expected [1 3], got %v", got)
		}
		if result.TotalMatched != 2 {
			t.Errorf("expected TotalMatched 2, got %d", result.TotalMatched)
		}
	})

	t.Run("empty term matches everything", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{})
		if result.TotalMatched != 3 {
			t.Errorf("expected TotalMatched 3, got %d", result.TotalMatched)
		}
	})

	t.Run("no matches is a valid empty result, not an error", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Search: "does not exist"})
		if result.TotalMatched != 0 {
			t.Errorf("expected TotalMatched 0, got %d", result.TotalMatched)
		}
		if result.Visible == nil || len(result.Visible) != 0 {
			t.Errorf("expected explicit empty slice, got %v", result.Visible)
		}
	})
}

func TestCategory(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Title: "A", Category: "electronics", Price: decimal.Zero},
		{ID: 2, Title: "B", Category: "Electronics", Price: decimal.Zero},
		{ID: 3, Title: "C", Category: "home", Price: decimal.Zero},
	}

	t.Run("matches exactly and case-sensitively", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Category: "electronics"})
		if got := ids(result.Visible); !equalIDs(got, []int{1}) {
			t.Errorf("expected [1], got %v", got)
		}
	})

	t.Run("all passes every category", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Category: filter.CategoryAll})
		if result.TotalMatched != 3 {
			t.Errorf("expected TotalMatched 3, got %d", result.TotalMatched)
		}
	})
}

func TestPagination(t *testing.T) {
	var products []domain.Product
	for i := 1; i <= 30; i++ {
		products = append(products, product(i, float64(i)))
	}

	t.Run("slices the requested page window", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Page: 2, PageSize: 12})
		if len(result.Visible) != 12 {
			t.Fatalf("expected 12 products, got %d", len(result.Visible))
		}
		if result.Visible[0].ID != 13 {
			t.Errorf("expected page 2 to start at product 13, got %d", result.Visible[0].ID)
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", result.TotalPages)
		}
	})

	t.Run("last page is partial", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Page: 3, PageSize: 12})
		if len(result.Visible) != 6 {
			t.Errorf("expected 6 products on the last page, got %d", len(result.Visible))
		}
	})

	t.Run("a page beyond the end is empty, not an error", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Page: 9, PageSize: 12})
		if len(result.Visible) != 0 {
			t.Errorf("expected no products, got %d", len(result.Visible))
		}
		if result.TotalMatched != 30 {
			t.Errorf("expected TotalMatched 30, got %d", result.TotalMatched)
		}
	})

	t.Run("filtering happens before pagination", func(t *testing.T) {
		result := filter.ComputeView(products, filter.Params{Search: "Product", Page: 1, PageSize: 5})
		if len(result.Visible) != 5 {
			t.Errorf("expected 5 products, got %d", len(result.Visible))
		}
		if result.TotalMatched != 30 {
			t.Errorf("expected TotalMatched to count all matches, got %d", result.TotalMatched)
		}
	})
}

func TestParamsReset(t *testing.T) {
	base := filter.Params{Page: 3, Category: "home", Sort: filter.SortRating}

	tests := []struct {
		name     string
		mutate   func(filter.Params) filter.Params
		wantPage int
	}{
		{
			name:     "changing search resets page to 1",
			mutate:   func(p filter.Params) filter.Params { return p.WithSearch("mug") },
			wantPage: 1,
		},
		{
			name:     "changing category resets page to 1",
			mutate:   func(p filter.Params) filter.Params { return p.WithCategory("electronics") },
			wantPage: 1,
		},
		{
			name:     "changing sort resets page to 1",
			mutate:   func(p filter.Params) filter.Params { return p.WithSort(filter.SortPriceLow) },
			wantPage: 1,
		},
		{
			name:     "changing page alone keeps the filter set",
			mutate:   func(p filter.Params) filter.Params { return p.WithPage(5) },
			wantPage: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mutate(base)
			if got.Page != tt.wantPage {
				t.Errorf("expected page %d, got %d", tt.wantPage, got.Page)
			}
		})
	}

	t.Run("page change does not disturb filters", func(t *testing.T) {
		got := base.WithPage(5)
		if got.Category != "home" || got.Sort != filter.SortRating {
			t.Errorf("filters changed: %+v", got)
		}
	})
}

func TestEmptyInput(t *testing.T) {
	result := filter.ComputeView(nil, filter.Params{Search: "anything"})
	if result.TotalMatched != 0 || len(result.Visible) != 0 {
		t.Errorf("expected empty result over nil input, got %+v", result)
	}
}
