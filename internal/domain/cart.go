package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product variant selection in a cart. UnitPrice is
// snapshotted at add-time for local carts; remote fetches re-join it with
// the live catalog price.
type LineItem struct {
	ID        string          `json:"id" bson:"_id,omitempty"`
	ProductID string          `json:"product_id" bson:"product_id"`
	Name      string          `json:"name" bson:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" bson:"unit_price"`
	Image     string          `json:"image" bson:"image"`
	Size      string          `json:"size,omitempty" bson:"size,omitempty"`
	Color     string          `json:"color,omitempty" bson:"color,omitempty"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	Stock     int             `json:"stock" bson:"stock"`
	AddedAt   time.Time       `json:"added_at" bson:"added_at"`
}

// SameVariant reports whether two lines refer to the same product variant
// and therefore must collapse into a single line with summed quantity.
func (li LineItem) SameVariant(other LineItem) bool {
	return li.ProductID == other.ProductID &&
		li.Size == other.Size &&
		li.Color == other.Color
}
