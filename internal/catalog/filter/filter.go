// Package filter computes filtered, sorted and paginated views over an
// in-memory product list. The computation is a pure function of the product
// slice and the view parameters; it never mutates its input.
package filter

import (
	"sort"
	"strings"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// CategoryAll matches every category.
const CategoryAll = "all"

// DefaultPageSize is the page window for the paged catalog view.
const DefaultPageSize = 12

// Params describes a catalog view request. The zero value means no search
// term, all categories, featured ordering, first page, default page size.
type Params struct {
	Search   string
	Category string
	Sort     SortKey
	Page     int
	PageSize int
}

// WithSearch returns params with the search term replaced and the page
// reset to the first, since the candidate set changes.
func (p Params) WithSearch(term string) Params {
	p.Search = term
	p.Page = 1
	return p
}

// WithCategory returns params with the category replaced and the page reset.
func (p Params) WithCategory(category string) Params {
	p.Category = category
	p.Page = 1
	return p
}

// WithSort returns params with the sort key replaced and the page reset.
func (p Params) WithSort(key SortKey) Params {
	p.Sort = key
	p.Page = 1
	return p
}

// WithPage returns params positioned on the given page. The filter set is
// untouched.
func (p Params) WithPage(page int) Params {
	p.Page = page
	return p
}

func (p Params) normalized() Params {
	if p.Category == "" {
		p.Category = CategoryAll
	}
	if p.Sort == "" {
		p.Sort = SortFeatured
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Result is the computed view: the visible page plus the total number of
// products that matched before pagination.
type Result struct {
	Visible      []domain.Product `json:"visible"`
	TotalMatched int              `json:"total_matched"`
	TotalPages   int              `json:"total_pages"`
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
}

// ComputeView applies the pipeline in fixed order: search filter, category
// filter, stable sort, page slice. An empty result set is a valid state.
func ComputeView(products []domain.Product, params Params) Result {
	params = params.normalized()

	matched := make([]domain.Product, 0, len(products))
	term := strings.ToLower(params.Search)
	for _, p := range products {
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		if params.Category != CategoryAll && p.Category != params.Category {
			continue
		}
		matched = append(matched, p)
	}

	sortProducts(matched, params.Sort)

	totalPages := (len(matched) + params.PageSize - 1) / params.PageSize

	start := (params.Page - 1) * params.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	visible := make([]domain.Product, end-start)
	copy(visible, matched[start:end])

	return Result{
		Visible:      visible,
		TotalMatched: len(matched),
		TotalPages:   totalPages,
		Page:         params.Page,
		PageSize:     params.PageSize,
	}
}

func matchesSearch(p domain.Product, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowerTerm) ||
		strings.Contains(strings.ToLower(p.Description), lowerTerm)
}

func sortProducts(products []domain.Product, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating.Rate > products[j].Rating.Rate
		})
	case SortNewest:
		// Highest ID first; IDs stand in for recency.
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ID > products[j].ID
		})
	case SortFeatured:
		// Keep the filtered order.
	}
}

// ParseSortKey maps a raw query value to a SortKey, defaulting to featured
// for unknown values.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return SortKey(raw)
	default:
		return SortFeatured
	}
}
