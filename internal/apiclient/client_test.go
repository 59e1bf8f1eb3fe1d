package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/gateway"
	cartshttp "github.com/loomwear/cartcore/internal/http"
	"github.com/loomwear/cartcore/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handlerRemote backs the real router so the client's DTOs and error
// mapping are exercised against the actual server wire format.
type handlerRemote struct {
	items  []domain.LineItem
	addErr error
}

func (r *handlerRemote) FetchAll(context.Context, string) ([]domain.LineItem, error) {
	return r.items, nil
}

func (r *handlerRemote) Add(context.Context, string, string, int, string, string) error {
	return r.addErr
}

func (r *handlerRemote) UpdateQuantity(context.Context, string, string, int) error {
	return nil
}

func (r *handlerRemote) Remove(context.Context, string, string) error {
	return nil
}

func (r *handlerRemote) Clear(context.Context, string) error {
	return nil
}

func newRouter(remote cartshttp.RemoteCart) http.Handler {
	handler := cartshttp.NewCartHandler(remote, pricing.DefaultPolicy(), 5*time.Second)
	return cartshttp.NewRouter(handler, 5*time.Second)
}

func TestClient_MapsSentinelErrors(t *testing.T) {
	cases := []struct {
		name    string
		addErr  error
		wantErr error
	}{
		{"product not found", catalog.ErrProductNotFound, catalog.ErrProductNotFound},
		{"product inactive", gateway.ErrProductInactive, gateway.ErrProductInactive},
		{"line not found", gateway.ErrLineNotFound, gateway.ErrLineNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(newRouter(&handlerRemote{addErr: tc.addErr}))
			defer srv.Close()

			client := New(srv.URL, srv.Client())
			err := client.Add(context.Background(), "u1", "p1", 1, "", "")

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestClient_MapsInsufficientStock(t *testing.T) {
	srv := httptest.NewServer(newRouter(&handlerRemote{
		addErr: &gateway.InsufficientStockError{Available: 2},
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	err := client.Add(context.Background(), "u1", "p1", 5, "", "")

	var stockErr *gateway.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
}

func TestClient_TransportErrorIsNetworkFailure(t *testing.T) {
	client := New("http://127.0.0.1:1", &http.Client{Timeout: 200 * time.Millisecond})

	err := client.Clear(context.Background(), "u1")

	require.ErrorIs(t, err, ErrNetworkFailure)
}

func TestClient_FetchAllRoundTrips(t *testing.T) {
	srv := httptest.NewServer(newRouter(&handlerRemote{}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	items, err := client.FetchAll(context.Background(), "u1")

	require.NoError(t, err)
	assert.Empty(t, items)
}
