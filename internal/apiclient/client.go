// Package apiclient is the consumer-side HTTP implementation of the
// remote cart: it speaks the cart API and maps responses back onto the
// gateway's error taxonomy.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/gateway"
	cartshttp "github.com/loomwear/cartcore/internal/http"
)

// ErrNetworkFailure is the catch-all for transport and server errors.
// Callers treat it as "log and continue locally".
var ErrNetworkFailure = errors.New("network failure")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) FetchAll(ctx context.Context, identity string) ([]domain.LineItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/cart", identity, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var cart cartshttp.CartResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("%w: decoding cart: %v", ErrNetworkFailure, err)
	}
	return cart.Items, nil
}

func (c *Client) Add(ctx context.Context, identity, productID string, quantity int, size, color string) error {
	body := cartshttp.AddItemRequestDTO{
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/cart", identity, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error {
	body := cartshttp.UpdateQuantityRequestDTO{Quantity: quantity}
	resp, err := c.do(ctx, http.MethodPatch, "/api/cart/"+lineID, identity, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, identity, lineID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/cart/"+lineID, identity, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) Clear(ctx context.Context, identity string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/cart", identity, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, identity string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set("X-User-ID", identity)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	return resp, nil
}

// decodeError maps an error payload back onto the sentinel errors the
// rest of the module works with. Unknown shapes become a NetworkFailure.
func decodeError(resp *http.Response) error {
	var payload cartshttp.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: server returned %d", ErrNetworkFailure, resp.StatusCode)
	}

	switch payload.Code {
	case "insufficient_stock":
		available := 0
		if payload.AvailableStock != nil {
			available = *payload.AvailableStock
		}
		return &gateway.InsufficientStockError{Available: available}
	case "product_not_found":
		return catalog.ErrProductNotFound
	case "product_inactive":
		return gateway.ErrProductInactive
	case "line_not_found":
		return gateway.ErrLineNotFound
	}
	return fmt.Errorf("%w: server returned %d: %s", ErrNetworkFailure, resp.StatusCode, payload.Error)
}
