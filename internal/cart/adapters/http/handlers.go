// Package http exposes the cart endpoints. Carts are session-scoped:
// authenticated requests resolve the cart from the bearer token, anonymous
// requests from the X-Session-ID header.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dejobratic/storefront/internal/auth"
	"github.com/dejobratic/storefront/internal/cart/app"
	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/events"
)

// Handler exposes HTTP endpoints for cart operations.
type Handler struct {
	manager *app.Manager
	auth    *auth.Service
	bus     events.Bus
}

// NewHandler constructs a Handler.
func NewHandler(manager *app.Manager, authService *auth.Service, bus events.Bus) *Handler {
	return &Handler{manager: manager, auth: authService, bus: bus}
}

// Register binds the cart handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/cart", h.handleCart)
	mux.HandleFunc("/v1/cart/items", h.handleItems)
	mux.HandleFunc("/v1/cart/items/", h.handleItemByID)
	mux.HandleFunc("/v1/checkout", h.checkout)
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.storeFor(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"cart": store.Cart()})
	case http.MethodDelete:
		cart := store.Clear(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	store, ok := h.storeFor(w, r)
	if !ok {
		return
	}

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !product.Valid() {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}

	cart := store.AddItem(r.Context(), product)
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handler) handleItemByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/cart/items/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	action := ""
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		action = trimmed[idx+1:]
		trimmed = trimmed[:idx]
	}

	productID, err := strconv.Atoi(trimmed)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	store, ok := h.storeFor(w, r)
	if !ok {
		return
	}

	switch action {
	case "":
		h.itemOp(w, r, store, productID)
	case "increment":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		cart := store.IncrementQuantity(r.Context(), productID)
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
	case "decrement":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		cart := store.DecrementQuantity(r.Context(), productID)
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) itemOp(w http.ResponseWriter, r *http.Request, store *app.Store, productID int) {
	switch r.Method {
	case http.MethodPut:
		var payload struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		cart := store.SetQuantity(r.Context(), productID, payload.Quantity)
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
	case http.MethodDelete:
		cart := store.RemoveItem(r.Context(), productID)
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// checkout is deliberately a stub: it announces the intent on the event
// bus and reports that order placement is not part of this service.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	store, ok := h.storeFor(w, r)
	if !ok {
		return
	}

	cart := store.Cart()
	if err := h.bus.PublishCheckoutStarted(r.Context(), store.ID(), cart.TotalItems); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusNotImplemented, map[string]any{
		"message": "checkout is not implemented in this demo storefront",
		"cart":    cart,
	})
}

// storeFor resolves the session's cart store. Bearer tokens win over the
// anonymous session header.
func (h *Handler) storeFor(w http.ResponseWriter, r *http.Request) (*app.Store, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := h.auth.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return nil, false
		}
		return h.manager.Store(r.Context(), "user:"+claims.UserID), true
	}

	session := strings.TrimSpace(r.Header.Get("X-Session-ID"))
	if session == "" {
		writeError(w, http.StatusBadRequest, "X-Session-ID header or bearer token required")
		return nil, false
	}
	return h.manager.Store(r.Context(), "session:"+session), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
