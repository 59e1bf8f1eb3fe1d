package cache

import (
	"context"
	"errors"

	"github.com/loomwear/cartcore/internal/repository"
)

// CartCache keeps raw cart lines warm between fetches. Only the stored
// lines are cached, never the catalog join: prices, stock and active
// flags are re-read from the catalog on every fetch. The gateway
// invalidates on every mutation.
type CartCache interface {
	Get(ctx context.Context, identity string) ([]repository.Line, error)
	Set(ctx context.Context, identity string, lines []repository.Line) error
	Delete(ctx context.Context, identity string) error
}

var ErrCacheMiss = errors.New("cache miss")
