package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/gateway"
	"github.com/loomwear/cartcore/internal/pricing"
	"github.com/shopspring/decimal"
)

// RemoteCart is the gateway surface the handlers call.
type RemoteCart interface {
	FetchAll(ctx context.Context, identity string) ([]domain.LineItem, error)
	Add(ctx context.Context, identity, productID string, quantity int, size, color string) error
	UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error
	Remove(ctx context.Context, identity, lineID string) error
	Clear(ctx context.Context, identity string) error
}

type CartHandler struct {
	remote  RemoteCart
	policy  pricing.Policy
	timeout time.Duration
}

func NewCartHandler(remote RemoteCart, policy pricing.Policy, timeout time.Duration) *CartHandler {
	return &CartHandler{
		remote:  remote,
		policy:  policy,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type SyncRequestDTO struct {
	Items []AddItemRequestDTO `json:"items"`
}

type CartResponseDTO struct {
	Items []domain.LineItem `json:"items"`
}

type ErrorResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code,omitempty"`
	AvailableStock *int   `json:"available_stock,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.remote.FetchAll(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleCartError(w, err)
		return
	}
	if items == nil {
		items = []domain.LineItem{}
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	identity := identityFromContext(r.Context())
	if err := h.remote.Add(ctx, identity, req.ProductID, req.Quantity, req.Size, req.Color); err != nil {
		handleCartError(w, err)
		return
	}

	if identity == "" {
		// Guest adds succeed by policy; the client keeps the item in its
		// local store.
		respondJSON(w, http.StatusOK, map[string]string{"message": "item added to cart (guest mode)"})
		return
	}

	items, err := h.remote.FetchAll(ctx, identity)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CartResponseDTO{Items: items})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID := chi.URLParam(r, "id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	identity := identityFromContext(r.Context())

	// Zero or below means remove, matching the local store contract.
	if req.Quantity <= 0 {
		if err := h.remote.Remove(ctx, identity, lineID); err != nil {
			handleCartError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
		return
	}

	if err := h.remote.UpdateQuantity(ctx, identity, lineID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "quantity updated"})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.remote.Remove(ctx, identityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.remote.Clear(ctx, identityFromContext(r.Context())); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// SyncCart merges a client's guest cart into the identity's remote cart:
// quantities clamp to stock, unknown and inactive products are skipped.
func (h *CartHandler) SyncCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sync requires authentication")
		return
	}

	var req SyncRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}

		err := h.remote.Add(ctx, identity, item.ProductID, item.Quantity, item.Size, item.Color)
		if err == nil {
			continue
		}

		var stockErr *gateway.InsufficientStockError
		if errors.As(err, &stockErr) {
			if stockErr.Available > 0 {
				if errClamp := h.remote.Add(ctx, identity, item.ProductID, stockErr.Available, item.Size, item.Color); errClamp != nil {
					log.Printf("cart sync clamp failed for product %s: %v", item.ProductID, errClamp)
				}
			}
			continue
		}
		if errors.Is(err, catalog.ErrProductNotFound) || errors.Is(err, gateway.ErrProductInactive) {
			continue
		}

		handleCartError(w, err)
		return
	}

	items, err := h.remote.FetchAll(ctx, identity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items})
}

func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.remote.FetchAll(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleCartError(w, err)
		return
	}

	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// GetBreakdown recomputes the full pricing from current line items on
// every call; nothing here is stored.
func (h *CartHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.remote.FetchAll(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleCartError(w, err)
		return
	}

	coupon, errCoupon := couponFromQuery(r)
	if errCoupon != nil {
		respondError(w, http.StatusBadRequest, "invalid_coupon", errCoupon.Error())
		return
	}

	respondJSON(w, http.StatusOK, pricing.ComputeBreakdown(items, h.policy, coupon))
}

func couponFromQuery(r *http.Request) (*pricing.Coupon, error) {
	kind := r.URL.Query().Get("coupon_kind")
	if kind == "" {
		return nil, nil
	}

	value, err := decimal.NewFromString(r.URL.Query().Get("coupon_value"))
	if err != nil {
		return nil, errors.New("coupon_value must be a decimal number")
	}

	switch pricing.CouponKind(kind) {
	case pricing.CouponPercentage, pricing.CouponFixedAmount:
		return &pricing.Coupon{Kind: pricing.CouponKind(kind), Value: value}, nil
	}
	return nil, errors.New("coupon_kind must be percentage or fixed_amount")
}

func handleCartError(w http.ResponseWriter, err error) {
	var stockErr *gateway.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:          "insufficient stock",
			Code:           "insufficient_stock",
			AvailableStock: &stockErr.Available,
		})
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, gateway.ErrProductInactive):
		respondError(w, http.StatusBadRequest, "product_inactive", "product is not available")
	case errors.Is(err, gateway.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", "cart item not found")
	default:
		log.Printf("cart request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "request failed")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
