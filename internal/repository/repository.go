package repository

import (
	"context"
	"errors"

	"github.com/loomwear/cartcore/internal/domain"
)

var ErrLineNotFound = errors.New("cart line not found")

// CartRepository persists remote cart line rows scoped by identity.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	ListLines(ctx context.Context, identity string) ([]Line, error)
	FindLine(ctx context.Context, identity, lineID string) (*Line, error)
	FindVariant(ctx context.Context, identity, productID, size, color string) (*Line, error)
	InsertLine(ctx context.Context, line Line) error
	UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error
	DeleteLine(ctx context.Context, identity, lineID string) error
	DeleteAll(ctx context.Context, identity string) error
}

// Line is the stored shape of a remote cart row. Display fields (name,
// price, image, stock) are joined with the catalog at read time, so only
// the variant selection is persisted.
type Line struct {
	ID        string `bson:"_id" json:"id"`
	Identity  string `bson:"identity" json:"identity"`
	ProductID string `bson:"product_id" json:"product_id"`
	Size      string `bson:"size,omitempty" json:"size,omitempty"`
	Color     string `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// ToLineItem joins a stored line with live product data.
func (l Line) ToLineItem(p *domain.Product) domain.LineItem {
	return domain.LineItem{
		ID:        l.ID,
		ProductID: l.ProductID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Size:      l.Size,
		Color:     l.Color,
		Quantity:  l.Quantity,
		Stock:     p.Stock,
	}
}
