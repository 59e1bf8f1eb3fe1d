// Package breaker wraps catalog lookups in a circuit breaker so a down
// catalog fails fast instead of stacking timeouts on every cart mutation.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/sony/gobreaker/v2"
)

type Catalog struct {
	inner catalog.Catalog
	cb    *gobreaker.CircuitBreaker[*domain.Product]
}

// Wrap decorates a catalog with a breaker that opens after five
// consecutive failures and probes again after 30 seconds.
func Wrap(inner catalog.Catalog) *Catalog {
	settings := gobreaker.Settings{
		Name:    "catalog",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A missing product is an answer, not a catalog outage.
			return err == nil || errors.Is(err, catalog.ErrProductNotFound)
		},
	}

	return &Catalog{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[*domain.Product](settings),
	}
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return c.cb.Execute(func() (*domain.Product, error) {
		return c.inner.GetProduct(ctx, id)
	})
}
