// Package http exposes the catalog endpoints: the filtered paged product
// view, the category list and the session-scoped incremental feed.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/dejobratic/storefront/internal/catalog/filter"
	"github.com/dejobratic/storefront/internal/catalog/loader"
	"github.com/dejobratic/storefront/internal/catalog/ports"
)

// Handler exposes HTTP endpoints for browsing the catalog.
type Handler struct {
	source     ports.Source
	loaderOpts []loader.Option

	mu    sync.Mutex
	feeds map[string]*loader.Loader
}

// NewHandler constructs a Handler. Loader options apply to every
// per-session feed the handler creates.
func NewHandler(source ports.Source, loaderOpts ...loader.Option) *Handler {
	return &Handler{
		source:     source,
		loaderOpts: loaderOpts,
		feeds:      make(map[string]*loader.Loader),
	}
}

// Register binds the catalog handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/products", h.listProducts)
	mux.HandleFunc("/v1/products/", h.getProduct)
	mux.HandleFunc("/v1/categories", h.listCategories)
	mux.HandleFunc("/v1/products/feed", h.feedSnapshot)
	mux.HandleFunc("/v1/products/feed/next", h.feedNext)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	products, err := h.source.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	params := filter.Params{
		Search:   r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Sort:     filter.ParseSortKey(r.URL.Query().Get("sort")),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}

	result := filter.ComputeView(products, params)

	// An empty page is a valid response, not an error.
	writeJSON(w, http.StatusOK, map[string]any{
		"products":      result.Visible,
		"total_matched": result.TotalMatched,
		"total_pages":   result.TotalPages,
		"page":          result.Page,
		"page_size":     result.PageSize,
	})
}

// getProduct serves the product detail page's single lookup. The feed
// routes are registered as exact patterns and never reach here.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	raw = strings.TrimSuffix(raw, "/")
	productID, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.source.Product(r.Context(), productID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	categories, err := h.source.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) feedSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	feed, ok := h.feedFor(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, feed.Snapshot())
}

// feedNext is the feed trigger: the server-side analogue of the "load
// more" button or the scroll-proximity event. Triggers while a batch is
// pending or after exhaustion are acknowledged but ignored.
func (h *Handler) feedNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	feed, ok := h.feedFor(w, r)
	if !ok {
		return
	}

	accepted := feed.Trigger()
	snapshot := feed.Snapshot()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"accepted":     accepted,
		"page":         snapshot.Page,
		"has_more":     snapshot.HasMore,
		"loading_more": snapshot.LoadingMore,
	})
}

func (h *Handler) feedFor(w http.ResponseWriter, r *http.Request) (*loader.Loader, bool) {
	session := strings.TrimSpace(r.Header.Get("X-Session-ID"))
	if session == "" {
		writeError(w, http.StatusBadRequest, "X-Session-ID header required")
		return nil, false
	}

	h.mu.Lock()
	if feed, ok := h.feeds[session]; ok {
		h.mu.Unlock()
		return feed, true
	}
	h.mu.Unlock()

	products, err := h.source.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return nil, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if feed, ok := h.feeds[session]; ok {
		return feed, true
	}
	feed := loader.New(products, h.loaderOpts...)
	h.feeds[session] = feed
	return feed, true
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
