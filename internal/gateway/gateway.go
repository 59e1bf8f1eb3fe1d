// Package gateway translates cart operations into identity-scoped
// requests against the persistence collaborator, joined with live
// catalog data. With no identity present every mutation is a deliberate
// successful no-op: guests are served by the local store instead.
package gateway

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/loomwear/cartcore/internal/cache"
	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/repository"
	"golang.org/x/sync/singleflight"
)

var ErrLineNotFound = repository.ErrLineNotFound

type Gateway struct {
	repo    repository.CartRepository
	catalog catalog.Catalog
	cache   cache.CartCache
	sfg     singleflight.Group // Prevents cache stampede on FetchAll
}

func New(repo repository.CartRepository, cat catalog.Catalog, c cache.CartCache) *Gateway {
	return &Gateway{
		repo:    repo,
		catalog: cat,
		cache:   c,
	}
}

// FetchAll returns the identity's lines joined with current catalog data.
// Prices reflect the catalog at read time, not an add-time snapshot: the
// remote cart is re-priced on every fetch. Lines whose product has been
// deleted from the catalog are dropped from the view.
func (g *Gateway) FetchAll(ctx context.Context, identity string) ([]domain.LineItem, error) {
	if identity == "" {
		return nil, nil
	}

	v, err, _ := g.sfg.Do(identity, func() (interface{}, error) {
		lines, errCache := g.cache.Get(ctx, identity)
		if errCache == nil {
			return lines, nil
		}
		if !errors.Is(errCache, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", errCache) // log cache error but continue
		}

		lines, errList := g.repo.ListLines(ctx, identity)
		if errList != nil {
			return nil, errList
		}

		go func() {
			if errSet := g.cache.Set(context.Background(), identity, lines); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return lines, nil
	})

	if err != nil {
		return nil, err
	}

	// Only raw lines come out of the cache. The catalog join runs on
	// every fetch so price, stock and active changes show up immediately.
	lines := v.([]repository.Line)
	joined := make([]domain.LineItem, 0, len(lines))
	for _, line := range lines {
		product, errGet := g.catalog.GetProduct(ctx, line.ProductID)
		if errors.Is(errGet, catalog.ErrProductNotFound) {
			continue
		}
		if errGet != nil {
			return nil, errGet
		}
		joined = append(joined, line.ToLineItem(product))
	}

	return joined, nil
}

// Add validates productID against the catalog and inserts a line, or sums
// the quantity into an existing line for the same variant. The summed
// quantity is re-checked against stock. No stored line ever holds a
// quantity below one: a non-positive quantity decrements the matching
// variant, deleting the line when the sum drops to zero or below, and
// is a no-op when no variant exists.
func (g *Gateway) Add(ctx context.Context, identity, productID string, quantity int, size, color string) error {
	if identity == "" {
		return nil
	}

	if quantity <= 0 {
		existing, err := g.repo.FindVariant(ctx, identity, productID, size, color)
		if errors.Is(err, repository.ErrLineNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		sum := existing.Quantity + quantity
		if sum <= 0 {
			err = g.repo.DeleteLine(ctx, identity, existing.ID)
		} else {
			err = g.repo.UpdateQuantity(ctx, identity, existing.ID, sum)
		}
		if err != nil {
			return err
		}

		g.invalidate(identity)
		return nil
	}

	product, err := g.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return ErrProductInactive
	}
	if quantity > product.Stock {
		return &InsufficientStockError{Available: product.Stock}
	}

	existing, err := g.repo.FindVariant(ctx, identity, productID, size, color)
	if err != nil && !errors.Is(err, repository.ErrLineNotFound) {
		return err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.Stock {
			return &InsufficientStockError{Available: product.Stock}
		}
		if errUpdate := g.repo.UpdateQuantity(ctx, identity, existing.ID, newQuantity); errUpdate != nil {
			return errUpdate
		}
	} else {
		line := repository.Line{
			ID:        uuid.New().String(),
			Identity:  identity,
			ProductID: productID,
			Size:      size,
			Color:     color,
			Quantity:  quantity,
		}
		if errInsert := g.repo.InsertLine(ctx, line); errInsert != nil {
			return errInsert
		}
	}

	g.invalidate(identity)
	return nil
}

// UpdateQuantity sets a line's quantity after re-validating the product.
// A non-positive quantity removes the line instead of storing it.
func (g *Gateway) UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error {
	if identity == "" {
		return nil
	}

	if quantity <= 0 {
		return g.Remove(ctx, identity, lineID)
	}

	line, err := g.repo.FindLine(ctx, identity, lineID)
	if err != nil {
		return err
	}

	product, err := g.catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return ErrProductInactive
	}
	if quantity > product.Stock {
		return &InsufficientStockError{Available: product.Stock}
	}

	if errUpdate := g.repo.UpdateQuantity(ctx, identity, lineID, quantity); errUpdate != nil {
		return errUpdate
	}

	g.invalidate(identity)
	return nil
}

// Remove deletes a line owned by this identity.
func (g *Gateway) Remove(ctx context.Context, identity, lineID string) error {
	if identity == "" {
		return nil
	}

	if err := g.repo.DeleteLine(ctx, identity, lineID); err != nil {
		return err
	}

	g.invalidate(identity)
	return nil
}

// Clear deletes every line owned by this identity. Clearing an already
// empty cart succeeds.
func (g *Gateway) Clear(ctx context.Context, identity string) error {
	if identity == "" {
		return nil
	}

	if err := g.repo.DeleteAll(ctx, identity); err != nil {
		return err
	}

	g.invalidate(identity)
	return nil
}

func (g *Gateway) invalidate(identity string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.cache.Delete(ctx, identity); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
