// Package source provides catalog source adapters: a remote HTTP client,
// a static fallback dataset and composable decorators for caching and
// metrics.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL points at the public fake-store API the storefront
	// demos against.
	DefaultBaseURL = "https://api.escuelajs.co/api/v1"

	defaultTimeout = 10 * time.Second

	// maxProducts caps how much of the remote catalog is pulled in.
	maxProducts = 30

	placeholderImage = "https://images.unsplash.com/photo-1560472354-b33ff0c44a43?w=400&h=400&fit=crop"
)

// remoteProduct matches the remote API's product shape.
type remoteProduct struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    struct {
		Name string `json:"name"`
	} `json:"category"`
	Images []string `json:"images"`
}

type remoteCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client fetches the product catalog from the remote API and transforms it
// into the domain shape, substituting defaults for missing fields.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient constructs a catalog client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products fetches and transforms the remote catalog. An empty or
// non-array payload is an error so callers can fall back.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var raw []remoteProduct
	if err := c.getJSON(ctx, "/products", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog API returned an empty product list")
	}

	if len(raw) > maxProducts {
		raw = raw[:maxProducts]
	}

	products := make([]domain.Product, 0, len(raw))
	for _, item := range raw {
		products = append(products, transform(item))
	}
	return domain.Normalize(products), nil
}

// Product fetches a single product by ID. A remote 404 maps to
// ports.ErrNotFound.
func (c *Client) Product(ctx context.Context, id int) (domain.Product, error) {
	var raw remoteProduct
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &raw); err != nil {
		return domain.Product{}, err
	}

	product := transform(raw)
	if !product.Valid() {
		return domain.Product{}, fmt.Errorf("catalog API returned a malformed product for id %d", id)
	}
	return product, nil
}

// Categories fetches the remote category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var raw []remoteCategory
	if err := c.getJSON(ctx, "/categories", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog API returned an empty category list")
	}

	names := make([]string, 0, len(raw))
	for _, cat := range raw {
		if cat.Name != "" {
			names = append(names, cat.Name)
		}
	}
	return names, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("fetch %s: %w", path, ports.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func transform(item remoteProduct) domain.Product {
	category := item.Category.Name
	if category == "" {
		category = "general"
	}

	image := placeholderImage
	if len(item.Images) > 0 && item.Images[0] != "" {
		image = item.Images[0]
	}

	return domain.Product{
		ID:          item.ID,
		Title:       item.Title,
		Price:       decimal.NewFromFloat(item.Price),
		Description: item.Description,
		Category:    category,
		Image:       image,
		// The remote API carries no review data; use a neutral rating.
		Rating: domain.Rating{Rate: 4.0, Count: 100},
	}
}
