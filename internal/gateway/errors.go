package gateway

import (
	"errors"
	"fmt"
)

var ErrProductInactive = errors.New("product is not available")

// InsufficientStockError blocks an add or quantity update outright. It
// carries the available count so the caller can decide whether to clamp
// and retry or give up; the gateway never clamps silently.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, %d available", e.Available)
}
