package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog view a cart operation validates against.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Image     string
	Stock     int
	IsActive  bool
	CreatedAt time.Time
}
