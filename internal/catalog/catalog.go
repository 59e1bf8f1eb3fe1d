// Package catalog exposes the product lookups cart operations validate
// against.
package catalog

import (
	"context"
	"errors"

	"github.com/loomwear/cartcore/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is defined here, on the consumer side; implementations live
// elsewhere (SQLite locally, anything remote behind a breaker).
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}
