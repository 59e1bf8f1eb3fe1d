package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/gateway"
	"github.com/loomwear/cartcore/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type remoteMock struct {
	items     []domain.LineItem
	fetchErr  error
	addErr    error
	updateErr error
	removeErr error
	addCalls  []AddItemRequestDTO
}

func (m *remoteMock) FetchAll(context.Context, string) ([]domain.LineItem, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.items, nil
}

func (m *remoteMock) Add(_ context.Context, _ , productID string, quantity int, size, color string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.addCalls = append(m.addCalls, AddItemRequestDTO{ProductID: productID, Quantity: quantity, Size: size, Color: color})
	return nil
}

func (m *remoteMock) UpdateQuantity(context.Context, string, string, int) error {
	return m.updateErr
}

func (m *remoteMock) Remove(context.Context, string, string) error {
	return m.removeErr
}

func (m *remoteMock) Clear(context.Context, string) error {
	return nil
}

func newHandler(remote *remoteMock) *CartHandler {
	return NewCartHandler(remote, pricing.DefaultPolicy(), 5*time.Second)
}

func doRequest(handler *CartHandler, method, target, identity string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if identity != "" {
		req.Header.Set("X-User-ID", identity)
	}

	r := chi.NewRouter()
	r.Use(IdentityMiddleware)
	r.Get("/api/cart", handler.GetCart)
	r.Post("/api/cart", handler.AddItem)
	r.Delete("/api/cart", handler.ClearCart)
	r.Post("/api/cart/sync", handler.SyncCart)
	r.Get("/api/cart/count", handler.GetCount)
	r.Get("/api/cart/breakdown", handler.GetBreakdown)
	r.Patch("/api/cart/{id}", handler.UpdateQuantity)
	r.Delete("/api/cart/{id}", handler.RemoveItem)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetCart_ReturnsItems(t *testing.T) {
	remote := &remoteMock{items: []domain.LineItem{
		{ID: "l1", ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
	}}

	rec := doRequest(newHandler(remote), http.MethodGet, "/api/cart", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p1", resp.Items[0].ProductID)
}

func TestGetCart_GuestGetsEmptyList(t *testing.T) {
	rec := doRequest(newHandler(&remoteMock{}), http.MethodGet, "/api/cart", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestAddItem_ValidatesQuantity(t *testing.T) {
	rec := doRequest(newHandler(&remoteMock{}), http.MethodPost, "/api/cart", "u1",
		AddItemRequestDTO{ProductID: "p1", Quantity: 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_InsufficientStockExposesAvailable(t *testing.T) {
	remote := &remoteMock{addErr: &gateway.InsufficientStockError{Available: 3}}

	rec := doRequest(newHandler(remote), http.MethodPost, "/api/cart", "u1",
		AddItemRequestDTO{ProductID: "p1", Quantity: 5})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_stock", resp.Code)
	require.NotNil(t, resp.AvailableStock)
	assert.Equal(t, 3, *resp.AvailableStock)
}

func TestAddItem_ProductNotFoundIs404(t *testing.T) {
	remote := &remoteMock{addErr: catalog.ErrProductNotFound}

	rec := doRequest(newHandler(remote), http.MethodPost, "/api/cart", "u1",
		AddItemRequestDTO{ProductID: "missing", Quantity: 1})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	remote := &remoteMock{}

	rec := doRequest(newHandler(remote), http.MethodPatch, "/api/cart/l1", "u1",
		UpdateQuantityRequestDTO{Quantity: 0})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "removed")
}

func TestUpdateQuantity_LineNotFoundIs404(t *testing.T) {
	remote := &remoteMock{updateErr: gateway.ErrLineNotFound}

	rec := doRequest(newHandler(remote), http.MethodPatch, "/api/cart/nope", "u1",
		UpdateQuantityRequestDTO{Quantity: 2})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncCart_RequiresAuthentication(t *testing.T) {
	rec := doRequest(newHandler(&remoteMock{}), http.MethodPost, "/api/cart/sync", "",
		SyncRequestDTO{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncCart_SkipsInvalidEntries(t *testing.T) {
	remote := &remoteMock{}

	rec := doRequest(newHandler(remote), http.MethodPost, "/api/cart/sync", "u1",
		SyncRequestDTO{Items: []AddItemRequestDTO{
			{ProductID: "", Quantity: 2},
			{ProductID: "p1", Quantity: 0},
			{ProductID: "p2", Quantity: 3},
		}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, remote.addCalls, 1)
	assert.Equal(t, "p2", remote.addCalls[0].ProductID)
}

func TestGetCount_SumsQuantities(t *testing.T) {
	remote := &remoteMock{items: []domain.LineItem{
		{ID: "l1", Quantity: 2},
		{ID: "l2", Quantity: 3},
	}}

	rec := doRequest(newHandler(remote), http.MethodGet, "/api/cart/count", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":5}`, rec.Body.String())
}

func TestGetBreakdown_AppliesCoupon(t *testing.T) {
	price, _ := decimal.NewFromString("50.00")
	remote := &remoteMock{items: []domain.LineItem{
		{ID: "l1", UnitPrice: price, Quantity: 1},
	}}

	rec := doRequest(newHandler(remote), http.MethodGet,
		"/api/cart/breakdown?coupon_kind=percentage&coupon_value=10", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var b pricing.Breakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.True(t, decimal.NewFromInt(50).Equal(b.Subtotal))
	assert.True(t, decimal.NewFromInt(5).Equal(b.Discount))
}

func TestGetBreakdown_RejectsUnknownCouponKind(t *testing.T) {
	rec := doRequest(newHandler(&remoteMock{}), http.MethodGet,
		"/api/cart/breakdown?coupon_kind=bogo&coupon_value=1", "u1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
